package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// a fixed clock for predictable live dates
func testClock() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func sampleRow() Document {
	return Document{
		"ID":              "EI-123",
		"UKCPVS ID":       "16/041",
		"Date collected":  "15/03/16",
		"Name/Collector":  "J. Smith",
		"Company":         "Cereal Co",
		"Country":         "UK",
		"County":          "Norfolk",
		"Town":            "Norwich",
		"Postal code":     "NR4 7UH",
		"GPS":             "52.62, 1.29",
		"Rust (YR/SR/LR)": "YR",
		"Variety":         "Solstice",
		"Host":            "Wheat",
	}
}

func TestSampleNormalize(t *testing.T) {
	assert := assert.New(t)
	normalizer := NewSampleNormalizer(30, nil, testClock)

	doc, err := normalizer.Normalize(context.Background(), sampleRow())
	assert.NoError(err)

	// identifiers live at the top level, next to the embargoed data group
	assert.Equal("EI-123", doc["ID"])
	assert.Equal("16/041", doc["UKCPVS ID"])
	assert.Equal(Document{"@type": "Date", "date": "2026-09-29"}, doc["sample_live_date"])

	values, ok := doc["sample"].(Document)
	assert.True(ok)
	assert.Equal("http://schema.org", values["@context"])
	assert.NotContains(values, "ID")
	assert.NotContains(values, "UKCPVS ID")

	assert.Equal(Document{"@type": "Date", "date": "2016-03-15"}, values["Date collected"])
	assert.Equal("20160315", values["Date collected (compact)"])

	// the GPS field held plain coordinates, so no geocoder was needed
	assert.Equal(Document{
		"@type": "GeoCoordinates", "latitude": 52.62, "longitude": 1.29,
	}, values["location"])
	assert.Equal(Document{
		"@type":           "PostalAddress",
		"addressLocality": "Norwich",
		"addressRegion":   "Norfolk",
		"addressCountry":  "GB",
		"postalCode":      "NR4 7UH",
	}, values["Address"])
	for _, consumed := range []string{"Town", "County", "Country", "Postal code", "GPS"} {
		assert.NotContains(values, consumed)
	}

	assert.Equal("Yellow Rust", values["Disease"])
	assert.NotContains(values, "Rust (YR/SR/LR)")

	assert.Equal(Document{"@type": "Person", "name": "J. Smith"}, values["Name/Collector"])
	assert.Equal(Document{"@type": "Organization", "name": "Cereal Co"}, values["Company"])
}

func TestSampleNormalizeRequiresID(t *testing.T) {
	normalizer := NewSampleNormalizer(30, nil, testClock)
	row := sampleRow()
	delete(row, "ID")
	_, err := normalizer.Normalize(context.Background(), row)
	var missing *MissingIdentifierError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "ID", missing.Field)
}

func TestSampleNormalizeRejectsBadDate(t *testing.T) {
	normalizer := NewSampleNormalizer(30, nil, testClock)
	row := sampleRow()
	row["Date collected"] = "sometime in spring"
	_, err := normalizer.Normalize(context.Background(), row)
	assert.Error(t, err)
}

func TestSampleNormalizeKeepsUnknownRust(t *testing.T) {
	normalizer := NewSampleNormalizer(30, nil, testClock)
	row := sampleRow()
	row["Rust (YR/SR/LR)"] = "XR"

	// an unrecognized rust value is a warning, not a failure
	doc, err := normalizer.Normalize(context.Background(), row)
	assert.NoError(t, err)
	values := doc["sample"].(Document)
	assert.Equal(t, "XR", values["Rust (YR/SR/LR)"])
	assert.NotContains(t, values, "Disease")
}

func TestPhenotypeNormalize(t *testing.T) {
	assert := assert.New(t)
	normalizer := NewPhenotypeNormalizer(30, testClock)

	// the isolate name doubles as the UKCPVS ID
	doc, err := normalizer.Normalize(context.Background(), Document{
		"Isolate":      "16/041",
		"Host Variety": "Solstice",
	})
	assert.NoError(err)
	assert.Equal("16/041", doc["UKCPVS ID"])
	assert.NotContains(doc, "ID")
	assert.Equal(Document{"@type": "Date", "date": "2026-09-29"}, doc["phenotype_live_date"])
	values := doc["phenotype"].(Document)
	assert.Equal("Solstice", values["Host Variety"])
	assert.NotContains(values, "Isolate")

	// a sample ID is preferred when present
	doc, err = normalizer.Normalize(context.Background(), Document{
		"ID":      "EI-123",
		"Isolate": "16/041",
	})
	assert.NoError(err)
	assert.Equal("EI-123", doc["ID"])
	assert.Equal("16/041", doc["UKCPVS ID"])

	_, err = normalizer.Normalize(context.Background(), Document{"Host Variety": "Solstice"})
	var missing *MissingIdentifierError
	assert.ErrorAs(err, &missing)
}

func TestGenotypeNormalize(t *testing.T) {
	assert := assert.New(t)
	normalizer := NewGenotypeNormalizer(30, testClock)

	// naming a company means the data awaits signoff
	doc, err := normalizer.Normalize(context.Background(), Document{
		"ID":      "EI-123",
		"Company": "Cereal Co",
	})
	assert.NoError(err)
	assert.Equal(Document{"@type": "Date", "date": "2026-09-29"}, doc["genotype_live_date"])

	// without one, the data goes live immediately
	doc, err = normalizer.Normalize(context.Background(), Document{
		"ID":           "EI-124",
		"Library name": "LIB-1",
	})
	assert.NoError(err)
	assert.Equal(Document{"@type": "Date", "date": "2026-08-30"}, doc["genotype_live_date"])

	_, err = normalizer.Normalize(context.Background(), Document{"Library name": "LIB-1"})
	var missing *MissingIdentifierError
	assert.ErrorAs(err, &missing)
}

func TestFilesNormalize(t *testing.T) {
	assert := assert.New(t)
	normalizer := NewFilesNormalizer("https://files.example.org/reads")

	doc, err := normalizer.Normalize(context.Background(), Document{
		"ID":       "EI-123",
		"Filename": "EI-123_R1.fastq.gz",
	})
	assert.NoError(err)
	assert.Equal("EI-123", doc["ID"])
	assert.NotContains(doc, "files_live_date") // file listings carry no embargo
	values := doc["files"].(Document)
	assert.Equal("https://files.example.org/reads/EI-123_R1.fastq.gz", values["download_url"])

	// no files host configured, no download URL
	doc, err = NewFilesNormalizer("").Normalize(context.Background(), Document{
		"ID":       "EI-123",
		"Filename": "EI-123_R1.fastq.gz",
	})
	assert.NoError(err)
	assert.NotContains(doc["files"].(Document), "download_url")
}

func TestMissingFields(t *testing.T) {
	assert := assert.New(t)

	headers := []string{"ID", "Isolate"}
	missing := MissingFields(headers, RequiredFields(Phenotypes))
	assert.Equal([]string{"Host Variety"}, missing)

	// every absent column is reported, not just the first
	missing = MissingFields([]string{"ID"}, RequiredFields(Genotypes))
	assert.Equal([]string{"Library name", "Genetic group", "Sample name"}, missing)

	// matching is case-sensitive
	missing = MissingFields([]string{"id", "isolate", "host variety"}, RequiredFields(Phenotypes))
	assert.Len(missing, 3)

	assert.Empty(MissingFields([]string{"anything"}, RequiredFields(Files)))
}

func TestParseCategory(t *testing.T) {
	assert := assert.New(t)
	for _, name := range []string{"samples", "phenotypes", "genotypes", "files"} {
		category, err := ParseCategory(name)
		assert.NoError(err)
		assert.Equal(name, category.String())
	}
	_, err := ParseCategory("isolates")
	var unknown *UnknownCategoryError
	assert.ErrorAs(err, &unknown)
}
