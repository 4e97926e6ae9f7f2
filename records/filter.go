package records

import (
	"time"
)

// Disclose applies staged disclosure to documents leaving the store: data
// groups whose "go live" date hasn't arrived are removed, along with the
// live-date bookkeeping fields and the store's internal IDs. Documents left
// holding no sample, phenotype or genotype data are dropped entirely.
// Running it twice changes nothing.
func Disclose(docs []Document, now time.Time) []Document {
	today := now.Format("2006-01-02")
	disclosed := make([]Document, 0, len(docs))
	for _, doc := range docs {
		delete(doc, mongoIDKey)
		for _, category := range disclosedCategories {
			discloseGroup(doc, category, today)
		}
		if !trivial(doc) {
			disclosed = append(disclosed, doc)
		}
	}
	return disclosed
}

// StripInternalIDs removes the store's internal IDs from documents headed to
// a client. Preview responses skip disclosure but still don't leak these.
func StripInternalIDs(docs []Document) []Document {
	for _, doc := range docs {
		delete(doc, mongoIDKey)
	}
	return docs
}

// Project trims documents to the requested fields. Disclosure needs the
// whole document to see the live dates, so projection happens after it, not
// in the store.
func Project(docs []Document, fields []string) []Document {
	if len(fields) == 0 {
		return docs
	}
	projected := make([]Document, len(docs))
	for i, doc := range docs {
		trimmed := Document{}
		for _, field := range fields {
			if value, present := doc[field]; present {
				trimmed[field] = value
			}
		}
		projected[i] = trimmed
	}
	return projected
}

// removes a category's data group if its live date is still in the future,
// and the live date itself regardless. A group with no live date at all is
// left alone.
func discloseGroup(doc Document, category Category, today string) {
	liveDateObj, present := doc[category.LiveDateKey()].(map[string]any)
	if !present {
		return
	}
	// both dates are YYYY-MM-DD strings, so an ordinary string comparison
	// orders them correctly
	if liveDate := stringField(liveDateObj, "date"); liveDate > today {
		delete(doc, category.GroupName())
	}
	delete(doc, category.LiveDateKey())
}

// reports whether a document has none of the data groups worth returning
func trivial(doc Document) bool {
	for _, category := range disclosedCategories {
		if _, present := doc[category.GroupName()]; present {
			return false
		}
	}
	return true
}
