package records

import (
	"fmt"
	"maps"

	"pathsurv/store"
)

// Merger writes normalized documents to a collection, unifying documents
// that were previously stored under different identifiers.
//
// Genotype data arrives keyed by ID and phenotype data by UKCPVS ID, so a
// single physical sample can end up as two stored documents. A sample record
// carries both identifiers and is the point where the two are recognized as
// one: any stored document keyed by the UKCPVS ID alone has its fields
// folded into the incoming record, which then lives under the sample ID, and
// the orphan is removed.
type Merger struct {
	Store      *store.Store
	Collection string
}

// Upsert writes a document to the collection, keyed by its ID (or by its
// UKCPVS ID if it has no ID). Documents carrying both identifiers are merged
// with any stored counterpart first.
func (m *Merger) Upsert(doc Document) error {
	key := idKey
	if stringField(doc, idKey) == "" {
		key = ukcpvsIDKey
	}

	id := stringField(doc, idKey)
	ukcpvsID := stringField(doc, ukcpvsIDKey)
	if id != "" && ukcpvsID != "" {
		merged, err := m.mergeSplitDocuments(doc, id, ukcpvsID)
		if err != nil || merged {
			return err
		}
	}
	return m.Store.UpsertByKey(m.Collection, key, doc)
}

// folds a stored UKCPVS-keyed document into the incoming one unless that
// document already carries the sample ID, then removes the orphan; reports
// whether it did so
func (m *Merger) mergeSplitDocuments(doc Document, id, ukcpvsID string) (bool, error) {
	ukcpvsDocs, err := m.Store.FindByField(m.Collection, ukcpvsIDKey, ukcpvsID)
	if err != nil {
		return false, err
	}
	if len(ukcpvsDocs) > 1 {
		return false, &MergeConflictError{
			Field: ukcpvsIDKey, Value: ukcpvsID, Matches: len(ukcpvsDocs),
		}
	}

	idDocs, err := m.Store.FindByField(m.Collection, idKey, id)
	if err != nil {
		return false, err
	}
	if len(idDocs) > 1 {
		return false, &MergeConflictError{
			Field: idKey, Value: id, Matches: len(idDocs),
		}
	}

	if len(ukcpvsDocs) != 1 {
		return false, nil // no UKCPVS-keyed document to absorb, ordinary upsert
	}
	orphan := ukcpvsDocs[0]
	orphanID := stringField(orphan, mongoIDKey)
	if len(idDocs) == 1 && orphanID == stringField(idDocs[0], mongoIDKey) {
		return false, nil // both identifiers already live on one document
	}

	// the stored document's fields take precedence over the incoming ones
	delete(orphan, mongoIDKey)
	maps.Copy(doc, orphan)

	if err := m.Store.UpsertByKey(m.Collection, idKey, doc); err != nil {
		return true, err
	}
	if _, err := m.Store.DeleteMatching(m.Collection, Document{mongoIDKey: orphanID}); err != nil {
		return true, fmt.Errorf("failed to remove merged document %s: %w", orphanID, err)
	}
	return true, nil
}
