// This package implements the heart of the service: turning raw uploaded
// field records into schema.org-decorated documents, merging documents that
// arrive under different identifiers, and filtering unpublished data out of
// query results.
package records

import (
	"pathsurv/store"
)

// a schemaless record document (see the store package)
type Document = store.Document

// the internal document key assigned by the store
const mongoIDKey = "_id"

// the top-level identifier fields shared by all categories
const (
	idKey       = "ID"
	ukcpvsIDKey = "UKCPVS ID"
)

// the suffix appended to a category's group name to form its embargo field
const liveDateSuffix = "_live_date"

// Category identifies one of the data groupings the service manages.
type Category int

const (
	Samples Category = iota
	Phenotypes
	Genotypes
	Files
)

// the categories whose data is subject to staged disclosure (files carry no
// embargo and don't count toward a document being non-trivial)
var disclosedCategories = []Category{Samples, Phenotypes, Genotypes}

// AllCategories lists every category the service accepts uploads for.
var AllCategories = []Category{Samples, Phenotypes, Genotypes, Files}

// ParseCategory maps a request path fragment ("samples", "phenotypes",
// "genotypes", "files") to its category.
func ParseCategory(name string) (Category, error) {
	for _, category := range AllCategories {
		if category.String() == name {
			return category, nil
		}
	}
	return 0, &UnknownCategoryError{Name: name}
}

func (c Category) String() string {
	switch c {
	case Samples:
		return "samples"
	case Phenotypes:
		return "phenotypes"
	case Genotypes:
		return "genotypes"
	case Files:
		return "files"
	}
	return "unknown"
}

// GroupName names the sub-object a category's values are stored under.
func (c Category) GroupName() string {
	switch c {
	case Samples:
		return "sample"
	case Phenotypes:
		return "phenotype"
	case Genotypes:
		return "genotype"
	case Files:
		return "files"
	}
	return "unknown"
}

// LiveDateKey names the field holding a category's "go live" date.
func (c Category) LiveDateKey() string {
	return c.GroupName() + liveDateSuffix
}
