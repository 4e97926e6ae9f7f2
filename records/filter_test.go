package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func embargoed(date string) Document {
	return Document{"@type": "Date", "date": date}
}

func TestDisclose(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	docs := []Document{
		{
			"_id":                 "abc",
			"ID":                  "EI-1",
			"sample":              map[string]any{"Host": "Wheat"},
			"sample_live_date":    embargoed("2026-09-29"), // still embargoed
			"genotype":            map[string]any{"Library name": "LIB-1"},
			"genotype_live_date":  embargoed("2026-08-01"), // live
			"phenotype":           map[string]any{"Host Variety": "Solstice"},
			"phenotype_live_date": embargoed("2026-08-30"), // live today
		},
	}
	disclosed := Disclose(docs, now)
	assert.Len(disclosed, 1)
	doc := disclosed[0]
	assert.NotContains(doc, "_id")
	assert.NotContains(doc, "sample")
	assert.Contains(doc, "genotype")
	assert.Contains(doc, "phenotype")
	for _, bookkeeping := range []string{
		"sample_live_date", "genotype_live_date", "phenotype_live_date",
	} {
		assert.NotContains(doc, bookkeeping)
	}
}

func TestDiscloseLeavesUndatedGroups(t *testing.T) {
	// a group with no live date at all is not the filter's to remove
	docs := []Document{{
		"ID":     "EI-1",
		"sample": map[string]any{"Host": "Wheat"},
	}}
	disclosed := Disclose(docs, time.Now())
	assert.Len(t, disclosed, 1)
	assert.Contains(t, disclosed[0], "sample")
}

func TestDiscloseDropsTrivialDocuments(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	docs := []Document{
		{
			"ID":               "EI-1",
			"sample":           map[string]any{"Host": "Wheat"},
			"sample_live_date": embargoed("2027-01-01"),
		},
		{
			// file listings don't make a document worth returning
			"ID":    "EI-2",
			"files": map[string]any{"Filename": "reads.fastq.gz"},
		},
	}
	assert.Empty(Disclose(docs, now))
}

func TestDiscloseIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	docs := []Document{{
		"_id":                "abc",
		"ID":                 "EI-1",
		"sample":             map[string]any{"Host": "Wheat"},
		"sample_live_date":   embargoed("2026-01-01"),
		"genotype":           map[string]any{},
		"genotype_live_date": embargoed("2027-01-01"),
	}}
	once := Disclose(docs, now)
	assert.Len(once, 1)
	twice := Disclose(once, now)
	assert.Equal(once, twice)
}

func TestStripInternalIDs(t *testing.T) {
	docs := []Document{{
		"_id":              "abc",
		"ID":               "EI-1",
		"sample_live_date": embargoed("2027-01-01"),
	}}
	stripped := StripInternalIDs(docs)
	assert.NotContains(t, stripped[0], "_id")
	// preview keeps embargoed data and its dates
	assert.Contains(t, stripped[0], "sample_live_date")
}

func TestProject(t *testing.T) {
	assert := assert.New(t)
	docs := []Document{{"ID": "EI-1", "sample": map[string]any{}, "genotype": map[string]any{}}}

	projected := Project(docs, []string{"ID", "sample", "absent"})
	assert.Len(projected, 1)
	assert.Contains(projected[0], "ID")
	assert.Contains(projected[0], "sample")
	assert.NotContains(projected[0], "genotype")
	assert.NotContains(projected[0], "absent")

	// no fields means no trimming
	assert.Equal(docs, Project(docs, nil))
}
