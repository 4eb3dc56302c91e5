package execution

import "github.com/vektah/gqlparser/v2/gqlerror"

// Result is the outcome of one operation: an *ExecutionResult or a
// *PreExecutionError.
type Result interface {
	executionResult() *ExecutionResult
}

// ExecutionResult is the response of an operation whose resolvers ran.
type ExecutionResult struct {
	Data       map[string]any `json:"data"`
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (r *ExecutionResult) executionResult() *ExecutionResult { return r }

// PreExecutionError is the response of an operation that failed before any
// resolver ran: parse, validation or operation checks. Streaming transports
// close the operation when they see one.
type PreExecutionError struct {
	ExecutionResult
}

// NewPreExecutionError returns a result carrying errs and no data.
func NewPreExecutionError(errs gqlerror.List) *PreExecutionError {
	return &PreExecutionError{ExecutionResult{Errors: errs}}
}

// Unwrap returns the shared fields of r.
func Unwrap(r Result) *ExecutionResult {
	if r == nil {
		return nil
	}
	return r.executionResult()
}

// IsPreExecution reports whether r failed before execution.
func IsPreExecution(r Result) bool {
	_, ok := r.(*PreExecutionError)
	return ok
}
