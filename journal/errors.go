package journal

import (
	"fmt"

	"github.com/google/uuid"
)

// indicates that the journal is not open and cannot respond to the given request
type NotOpenError struct {
}

func (e NotOpenError) Error() string {
	return "The import journal is not open for reading or writing."
}

// indicates that a new import record could not be created
type NewRecordError struct {
	Id      uuid.UUID
	Message string
}

func (e NewRecordError) Error() string {
	return fmt.Sprintf("Could not create a new import record with ID %s: %s", e.Id.String(), e.Message)
}

// indicates that a stored import record is unusable
type InvalidRecordError struct {
	Id      uuid.UUID
	Message string
}

func (e InvalidRecordError) Error() string {
	return fmt.Sprintf("The import record with ID %s is invalid: %s", e.Id.String(), e.Message)
}

// indicates that the journal's database could not be opened
type CantOpenError struct {
	Message string
}

func (e CantOpenError) Error() string {
	return fmt.Sprintf("The import journal could not be opened: %s", e.Message)
}

// indicates that the journal's database could not be closed
type CantCloseError struct {
	Message string
}

func (e CantCloseError) Error() string {
	return fmt.Sprintf("The import journal could not be closed: %s", e.Message)
}
