package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), []string{"samples", "files"})
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndFindByField(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	err := s.UpsertByKey("samples", "ID", Document{"ID": "S-1", "Host": "Wheat"})
	assert.NoError(err)

	docs, err := s.FindByField("samples", "ID", "S-1")
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Equal("Wheat", docs[0]["Host"])
	assert.NotEmpty(docs[0]["_id"])

	// upserting again updates in place, keeping the _id
	firstID := docs[0]["_id"]
	err = s.UpsertByKey("samples", "ID", Document{"ID": "S-1", "Host": "Barley"})
	assert.NoError(err)
	docs, err = s.FindByField("samples", "ID", "S-1")
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Equal("Barley", docs[0]["Host"])
	assert.Equal(firstID, docs[0]["_id"])
}

func TestUpsertFoldsIntoExistingDocument(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	// an upsert only touches the fields it carries
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-1", "sample": map[string]any{"Host": "Wheat"}}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-1", "genotype": map[string]any{"Library name": "LIB-1"}}))

	docs, err := s.FindByField("samples", "ID", "S-1")
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Contains(docs[0], "sample")
	assert.Contains(docs[0], "genotype")
}

func TestFindMatching(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-1", "Host": "Wheat", "Country": "GB"}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-2", "Host": "Wheat", "Country": "FR"}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-3", "Host": "Barley", "Country": "GB"}))

	docs, err := s.FindMatching("samples", Document{"Host": "Wheat"}, nil)
	assert.NoError(err)
	assert.Len(docs, 2)

	docs, err = s.FindMatching("samples", Document{"Host": "Wheat", "Country": "GB"}, nil)
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Equal("S-1", docs[0]["ID"])

	// an empty filter matches everything
	docs, err = s.FindMatching("samples", Document{}, nil)
	assert.NoError(err)
	assert.Len(docs, 3)

	// projection trims to the requested fields plus _id
	docs, err = s.FindMatching("samples", Document{"ID": "S-1"}, []string{"Host"})
	assert.NoError(err)
	assert.Len(docs, 1)
	assert.Equal("Wheat", docs[0]["Host"])
	assert.NotContains(docs[0], "Country")
	assert.Contains(docs[0], "_id")
}

func TestFindMatchingNestedValues(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	assert.NoError(s.UpsertByKey("samples", "ID", Document{
		"ID":     "S-1",
		"sample": map[string]any{"Variety": "Solstice"},
	}))
	docs, err := s.FindMatching("samples",
		Document{"sample": map[string]any{"Variety": "Solstice"}}, nil)
	assert.NoError(err)
	assert.Len(docs, 1)
}

func TestUpsertDuplicateKey(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	// two documents sharing a UKCPVS ID, keyed by different IDs
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-1", "UKCPVS ID": "U-9"}))
	assert.NoError(s.UpsertByKey("samples", "ID",
		Document{"ID": "S-2", "UKCPVS ID": "U-9"}))

	err := s.UpsertByKey("samples", "UKCPVS ID",
		Document{"ID": "S-3", "UKCPVS ID": "U-9"})
	var duplicate *DuplicateKeyError
	assert.ErrorAs(err, &duplicate)
	assert.Equal("UKCPVS ID", duplicate.Field)
}

func TestDeleteMatching(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	assert.NoError(s.UpsertByKey("samples", "ID", Document{"ID": "S-1", "Host": "Wheat"}))
	assert.NoError(s.UpsertByKey("samples", "ID", Document{"ID": "S-2", "Host": "Wheat"}))
	assert.NoError(s.UpsertByKey("samples", "ID", Document{"ID": "S-3", "Host": "Barley"}))

	deleted, err := s.DeleteMatching("samples", Document{"Host": "Wheat"})
	assert.NoError(err)
	assert.Equal(2, deleted)

	remaining, err := s.All("samples")
	assert.NoError(err)
	assert.Len(remaining, 1)
	assert.Equal("S-3", remaining[0]["ID"])
}

func TestUnknownCollection(t *testing.T) {
	s := openTestStore(t)
	_, err := s.All("isolates")
	var unknown *UnknownCollectionError
	assert.ErrorAs(t, err, &unknown)
}
