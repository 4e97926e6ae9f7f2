package store

import "fmt"

// indicates a request against a collection the store doesn't hold
type UnknownCollectionError struct {
	Name string
}

func (e UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection: %s", e.Name)
}

// indicates a keyed upsert whose key matched more than one stored document
type DuplicateKeyError struct {
	Collection string
	Field      string
	Value      string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("multiple documents in %s match %s = %q",
		e.Collection, e.Field, e.Value)
}
