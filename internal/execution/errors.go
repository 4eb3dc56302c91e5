package execution

import (
	"errors"
	"fmt"
)

// ErrAlreadyCompleted is returned when a result is stored twice.
var ErrAlreadyCompleted = errors.New("execution: context already completed")

var ErrNilResult = errors.New("execution: nil result")

// MissingDocumentError is returned by accessors that need a parsed document.
type MissingDocumentError struct{}

func (*MissingDocumentError) Error() string {
	return "execution: no GraphQL document available"
}

// UnknownOperationError is returned when the document has no operation with
// the requested name.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	if e.Name == "" {
		return "execution: document contains no operation"
	}
	return fmt.Sprintf("execution: unknown operation named %q", e.Name)
}
