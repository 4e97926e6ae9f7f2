package records

import (
	"context"
	"time"
)

const isolateKey = "Isolate"

// PhenotypeNormalizer turns raw phenotype rows into embargoed phenotype
// documents.
type PhenotypeNormalizer struct {
	normalizer
}

func NewPhenotypeNormalizer(stageDays int, now func() time.Time) *PhenotypeNormalizer {
	return &PhenotypeNormalizer{normalizer{StageDays: stageDays, Now: now}}
}

func (n *PhenotypeNormalizer) Category() Category {
	return Phenotypes
}

// Normalize wraps a phenotype row in a document keyed by its sample ID when
// it has one, or else by its isolate name (stored as the UKCPVS ID, which is
// what the isolate name is). Phenotype data is always embargoed.
func (n *PhenotypeNormalizer) Normalize(ctx context.Context, values Document) (Document, error) {
	doc := Document{}
	hoistIdentifier(doc, values, idKey, idKey)
	hoistIdentifier(doc, values, isolateKey, ukcpvsIDKey)
	if len(doc) == 0 {
		return nil, &MissingIdentifierError{Field: isolateKey}
	}
	doc[Phenotypes.GroupName()] = values
	doc[Phenotypes.LiveDateKey()] = n.liveDate(true)
	return doc, nil
}
