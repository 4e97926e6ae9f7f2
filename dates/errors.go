package dates

import "fmt"

// indicates that a raw date string matched none of the supported upload
// conventions
type UnparseableDateError struct {
	Value string
}

func (e UnparseableDateError) Error() string {
	return fmt.Sprintf("could not parse date %q", e.Value)
}
