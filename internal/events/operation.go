package events

import (
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// OperationStart is emitted once the operation to run is known.
type OperationStart struct {
	OperationName string
	OperationType string
}

// OperationFinish is emitted when an operation has a result.
type OperationFinish struct {
	OperationName string
	OperationType string
	Errors        gqlerror.List
	// PreExecution is set when the operation failed before any resolver ran.
	PreExecution bool
	Duration     time.Duration
}
