package records

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"pathsurv/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), []string{"samples"})
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMergeUnifiesSplitDocuments(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)
	merger := &Merger{Store: s, Collection: "samples"}

	// genotype data arrived keyed by ID, phenotype data keyed by UKCPVS ID
	assert.NoError(merger.Upsert(Document{
		"ID":       "EI-123",
		"genotype": map[string]any{"Library name": "LIB-1"},
	}))
	assert.NoError(merger.Upsert(Document{
		"UKCPVS ID": "16/041",
		"phenotype": map[string]any{"Host Variety": "Solstice"},
	}))
	docs, err := s.All("samples")
	assert.NoError(err)
	assert.Len(docs, 2)

	// the sample record carries both identifiers and unifies the pair
	assert.NoError(merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"sample":    map[string]any{"Host": "Wheat"},
	}))

	docs, err = s.All("samples")
	assert.NoError(err)
	assert.Len(docs, 1)
	doc := docs[0]
	assert.Equal("EI-123", doc["ID"])
	assert.Equal("16/041", doc["UKCPVS ID"])
	assert.Contains(doc, "sample")
	assert.Contains(doc, "genotype")
	assert.Contains(doc, "phenotype")
}

func TestMergeAbsorbsUkcpvsOnlyDocument(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)
	merger := &Merger{Store: s, Collection: "samples"}

	// phenotype data arrived first, so only a UKCPVS-keyed document exists
	assert.NoError(merger.Upsert(Document{
		"UKCPVS ID": "16/041",
		"phenotype": map[string]any{"Host Variety": "Solstice"},
	}))

	assert.NoError(merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"sample":    map[string]any{"Host": "Wheat"},
	}))

	// one document, keyed by the sample ID, carrying both sub-objects
	docs, err := s.All("samples")
	assert.NoError(err)
	assert.Len(docs, 1)
	doc := docs[0]
	assert.Equal("EI-123", doc["ID"])
	assert.Equal("16/041", doc["UKCPVS ID"])
	assert.Contains(doc, "sample")
	assert.Contains(doc, "phenotype")
}

func TestMergePrecedence(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)
	merger := &Merger{Store: s, Collection: "samples"}

	assert.NoError(merger.Upsert(Document{
		"ID":     "EI-123",
		"shared": "from id doc",
	}))
	assert.NoError(merger.Upsert(Document{
		"UKCPVS ID": "16/041",
		"shared":    "from ukcpvs doc",
	}))
	assert.NoError(merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"shared":    "from incoming record",
	}))

	// on collision the previously stored UKCPVS-keyed value wins
	docs, err := s.FindByField("samples", "ID", "EI-123")
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Equal("from ukcpvs doc", docs[0]["shared"])
}

func TestMergeSkipsWhenBothKeysOnOneDocument(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)
	merger := &Merger{Store: s, Collection: "samples"}

	assert.NoError(merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"sample":    map[string]any{"Host": "Wheat"},
	}))
	// importing again is an ordinary update, not a merge-and-delete
	assert.NoError(merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"sample":    map[string]any{"Host": "Barley"},
	}))

	docs, err := s.All("samples")
	assert.NoError(err)
	assert.Len(docs, 1)
	sample := docs[0]["sample"].(map[string]any)
	assert.Equal("Barley", sample["Host"])
}

func TestMergeConflict(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)
	merger := &Merger{Store: s, Collection: "samples"}

	// two distinct documents claim the same UKCPVS ID
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "A", "UKCPVS ID": "16/041"}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "B", "UKCPVS ID": "16/041"}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "EI-123"}))

	err := merger.Upsert(Document{
		"ID":        "EI-123",
		"UKCPVS ID": "16/041",
		"sample":    map[string]any{"Host": "Wheat"},
	})
	var conflict *MergeConflictError
	assert.ErrorAs(err, &conflict)
	assert.Equal("UKCPVS ID", conflict.Field)
	assert.Equal(2, conflict.Matches)

	// nothing was written or deleted for the conflicted record
	docs, err := s.All("samples")
	assert.NoError(err)
	assert.Len(docs, 3)
}
