package records

import (
	"context"
	"fmt"

	"pathsurv/store"
)

// the fate of an import batch as a whole
type BatchStatus string

const (
	BatchFailed             BatchStatus = "failed"
	BatchSucceeded          BatchStatus = "succeeded"
	BatchPartiallySucceeded BatchStatus = "partially-succeeded"
)

// RecordError describes why one record in a batch was rejected.
type RecordError struct {
	Key     string `json:"key"`   // the record's identifier, or "row N"
	Row     int    `json:"row"`   // 1-based position in the batch
	Message string `json:"error"` // what went wrong
}

// BatchResult summarizes an import batch: how many records made it in, what
// happened to those that didn't, and the identifiers that were written.
type BatchResult struct {
	Category    string        `json:"category"`
	Total       int           `json:"total"`
	Imported    int           `json:"imported"`
	ImportedIDs []string      `json:"-"`
	Errors      []RecordError `json:"errors,omitempty"`
	Status      BatchStatus   `json:"status"`
}

// Importer runs import batches: each record is normalized for its category
// and written through the merge resolver, independently of its neighbors.
type Importer struct {
	Store       *store.Store
	Normalizers map[Category]Normalizer
	Collections map[Category]string
	// when set, records are normalized and checked but nothing is written
	DryRun bool
}

// Import processes a batch of raw records for a category. A bad header line
// rejects the whole batch; after that each record succeeds or fails on its
// own, and the result reports every failure keyed by the record's best
// available identifier.
func (imp *Importer) Import(ctx context.Context, category Category, headers []string, rows []Document) (BatchResult, error) {
	result := BatchResult{
		Category: category.String(),
		Total:    len(rows),
	}
	if headers != nil {
		if err := CheckHeaders(headers, category); err != nil {
			return result, err
		}
	}

	normalizer, known := imp.Normalizers[category]
	if !known {
		return result, &UnknownCategoryError{Name: category.String()}
	}
	merger := &Merger{Store: imp.Store, Collection: imp.Collections[category]}

	for i, row := range rows {
		key := errorKey(row, i)
		doc, err := normalizer.Normalize(ctx, row)
		if err == nil && !imp.DryRun {
			err = merger.Upsert(doc)
		}
		if err != nil {
			result.Errors = append(result.Errors, RecordError{
				Key:     key,
				Row:     i + 1,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
		result.ImportedIDs = append(result.ImportedIDs, key)
	}

	switch {
	case len(result.Errors) == 0:
		result.Status = BatchSucceeded
	case result.Imported == 0:
		result.Status = BatchFailed
	default:
		result.Status = BatchPartiallySucceeded
	}
	return result, nil
}

// picks the identifier a record's errors are reported under, before
// normalization has a chance to move the identifier fields around
func errorKey(row Document, index int) string {
	for _, field := range []string{idKey, ukcpvsIDKey, isolateKey} {
		if value := stringField(row, field); value != "" {
			return value
		}
	}
	return fmt.Sprintf("row %d", index+1)
}
