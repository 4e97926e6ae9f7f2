package records

import (
	"context"
	"log/slog"
	"time"

	"pathsurv/dates"
	"pathsurv/geocoder"
)

const (
	dateCollectedKey = "Date collected"
	compactDateKey   = "Date collected (compact)"
	collectorKey     = "Name/Collector"
	companyKey       = "Company"
	rustKey          = "Rust (YR/SR/LR)"
	diseaseKey       = "Disease"
)

// the pathogen names behind the upstream rust abbreviations
var rustNames = map[string]string{
	"YR": "Yellow Rust",
	"SR": "Stem Rust",
	"LR": "Leaf Rust",
}

// SampleNormalizer turns raw field sample rows into sample documents.
type SampleNormalizer struct {
	normalizer
	Geocoder *geocoder.Geocoder // nil disables remote geocoding
}

// NewSampleNormalizer creates a sample normalizer with the given embargo
// length and geocoder (which may be nil).
func NewSampleNormalizer(stageDays int, geo *geocoder.Geocoder, now func() time.Time) *SampleNormalizer {
	return &SampleNormalizer{
		normalizer: normalizer{StageDays: stageDays, Now: now},
		Geocoder:   geo,
	}
}

func (n *SampleNormalizer) Category() Category {
	return Samples
}

// Normalize decorates a raw sample row with schema.org structures and wraps
// it in an embargoed document keyed by its identifiers. The date must parse;
// location and pathogen resolution degrade to warnings.
func (n *SampleNormalizer) Normalize(ctx context.Context, values Document) (Document, error) {
	id := stringField(values, idKey)
	if id == "" {
		return nil, &MissingIdentifierError{Field: idKey}
	}

	values["@context"] = schemaOrgContext

	rawDate := stringField(values, dateCollectedKey)
	isoDate, compactDate, err := dates.Normalize(rawDate)
	if err != nil {
		return nil, err
	}
	values[dateCollectedKey] = dateObject(isoDate)
	values[compactDateKey] = compactDate

	if err := resolveLocation(ctx, values, n.Geocoder); err != nil {
		slog.Warn("no location data for sample", "id", id, "error", err)
	}

	n.replacePathogen(values, id)

	if collector := stringField(values, collectorKey); collector != "" {
		values[collectorKey] = person(collector)
	}
	if company := stringField(values, companyKey); company != "" {
		values[companyKey] = organization(company)
	}

	doc := Document{}
	hoistIdentifier(doc, values, idKey, idKey)
	hoistIdentifier(doc, values, ukcpvsIDKey, ukcpvsIDKey)
	doc[Samples.GroupName()] = values
	doc[Samples.LiveDateKey()] = n.liveDate(true)
	return doc, nil
}

// converts the rust abbreviation to its pathogen name under "Disease"; an
// unrecognized or absent abbreviation is only worth a warning
func (n *SampleNormalizer) replacePathogen(values Document, id string) {
	abbreviation := stringField(values, rustKey)
	if name, known := rustNames[abbreviation]; known {
		values[diseaseKey] = name
		delete(values, rustKey)
	} else {
		slog.Warn("unrecognized rust value in sample", "id", id, "value", abbreviation)
	}
}
