package records

import "fmt"

// indicates a request naming a category the service doesn't manage
type UnknownCategoryError struct {
	Name string
}

func (e UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category: %s", e.Name)
}

// indicates a record lacking the identifier its category requires
type MissingIdentifierError struct {
	Field string
}

func (e MissingIdentifierError) Error() string {
	return fmt.Sprintf("record has no %q value", e.Field)
}

// indicates an upload whose header line lacks required columns
type MissingFieldsError struct {
	Fields []string
}

func (e MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

// indicates that a record's identifiers each matched more than one stored
// document, so there is no single pair of documents to merge
type MergeConflictError struct {
	Field   string
	Value   string
	Matches int
}

func (e MergeConflictError) Error() string {
	return fmt.Sprintf("%d stored documents match %s = %q; refusing to merge",
		e.Matches, e.Field, e.Value)
}
