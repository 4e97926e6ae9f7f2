package records

import (
	"context"
	"time"
)

// GenotypeNormalizer turns raw genotype rows into genotype documents.
type GenotypeNormalizer struct {
	normalizer
}

func NewGenotypeNormalizer(stageDays int, now func() time.Time) *GenotypeNormalizer {
	return &GenotypeNormalizer{normalizer{StageDays: stageDays, Now: now}}
}

func (n *GenotypeNormalizer) Category() Category {
	return Genotypes
}

// Normalize wraps a genotype row in a document keyed by its sample ID.
// Genotype data is embargoed only when it names a company awaiting signoff;
// otherwise it goes live immediately.
func (n *GenotypeNormalizer) Normalize(ctx context.Context, values Document) (Document, error) {
	doc := Document{}
	hoistIdentifier(doc, values, idKey, idKey)
	if len(doc) == 0 {
		return nil, &MissingIdentifierError{Field: idKey}
	}
	hidden := stringField(values, companyKey) != ""
	doc[Genotypes.GroupName()] = values
	doc[Genotypes.LiveDateKey()] = n.liveDate(hidden)
	return doc, nil
}
