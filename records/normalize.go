package records

import (
	"context"
	"time"
)

// Normalizer turns one raw uploaded record into a storable document for its
// category. Normalization is all-or-nothing: an error means the record is
// rejected and nothing is written for it.
type Normalizer interface {
	Category() Category
	Normalize(ctx context.Context, values Document) (Document, error)
}

// DefaultStageDays is how long imported data stays embargoed when the
// configuration doesn't say otherwise.
const DefaultStageDays = 30

// common state shared by the category normalizers
type normalizer struct {
	StageDays int              // embargo length in days
	Now       func() time.Time // defaults to time.Now
}

func (n normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// builds a category's "go live" date: the end of the embargo period when
// hidden, today when the data should be immediately visible
func (n normalizer) liveDate(hidden bool) Document {
	t := n.now()
	if hidden {
		days := n.StageDays
		if days <= 0 {
			days = DefaultStageDays
		}
		t = t.AddDate(0, 0, days)
	}
	return dateObject(t.Format("2006-01-02"))
}

// moves a record's identifier fields from its values up to the top level of
// the enclosing document
func hoistIdentifier(doc, values Document, field, as string) {
	if value := stringField(values, field); value != "" {
		doc[as] = value
		delete(values, field)
	}
}
