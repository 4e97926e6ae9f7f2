package records

import "slices"

// the columns an upload for each category must provide
var requiredFields = map[Category][]string{
	Samples: {
		"ID",
		"UKCPVS ID",
		"Date collected",
		"Name/Collector",
		"Company",
		"Country",
		"County",
		"Town",
		"Postal code",
		"GPS",
		"Rust (YR/SR/LR)",
		"Variety",
		"Host",
	},
	Phenotypes: {
		"ID",
		"Isolate",
		"Host Variety",
	},
	Genotypes: {
		"ID",
		"Library name",
		"Genetic group",
		"Sample name",
	},
	Files: {},
}

// RequiredFields lists the columns an upload for the given category must
// provide.
func RequiredFields(category Category) []string {
	return requiredFields[category]
}

// MissingFields reports every required column absent from an upload's header
// line. Matching is exact and case-sensitive: the upstream spreadsheets are
// expected to carry these column names verbatim.
func MissingFields(headers []string, required []string) []string {
	var missing []string
	for _, field := range required {
		if !slices.Contains(headers, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// CheckHeaders validates an upload's header line against a category's
// required columns, reporting all missing columns at once.
func CheckHeaders(headers []string, category Category) error {
	if missing := MissingFields(headers, RequiredFields(category)); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
