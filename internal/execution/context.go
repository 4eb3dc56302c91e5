// Package execution holds the per-operation state shared by the executor
// and the transports, and the two result shapes an operation ends with.
package execution

import (
	"context"
	"slices"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator/rules"

	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// State is the lifecycle state of an ExecutionContext.
type State int

const (
	Pending State = iota
	Completed
)

func (s State) String() string {
	if s == Completed {
		return "completed"
	}
	return "pending"
}

// ParseOptions limit query parsing. Zero values mean no limit.
type ParseOptions struct {
	MaxTokens int
}

// ExecutionContext is the state of one operation. It is created per
// operation, mutated in place while the operation runs, and must not be
// shared between goroutines.
type ExecutionContext struct {
	// Query is the raw query text. It may be empty when Document is set.
	Query             string
	Schema            *schema.Schema
	AllowedOperations []language.Operation

	// Context is the value resolvers see as the request context.
	Context   any
	Variables map[string]any
	RootValue any

	// ProvidedOperationName overrides the name found in the document.
	ProvidedOperationName *string

	Document           *language.QueryDocument
	PreExecutionErrors gqlerror.List
	Result             Result

	ParseOptions    *ParseOptions
	ValidationRules *rules.Rules

	ExtensionsResults   map[string]any
	OperationExtensions map[string]any
}

// Option sets an optional field of an ExecutionContext.
type Option func(*ExecutionContext)

func WithUserContext(v any) Option {
	return func(ec *ExecutionContext) { ec.Context = v }
}

func WithVariables(vars map[string]any) Option {
	return func(ec *ExecutionContext) { ec.Variables = vars }
}

func WithRootValue(v any) Option {
	return func(ec *ExecutionContext) { ec.RootValue = v }
}

// WithOperationName selects the operation to run. An empty name is a valid
// override, distinct from not providing one.
func WithOperationName(name string) Option {
	return func(ec *ExecutionContext) { ec.ProvidedOperationName = &name }
}

func WithDocument(doc *language.QueryDocument) Option {
	return func(ec *ExecutionContext) { ec.Document = doc }
}

func WithParseOptions(opts ParseOptions) Option {
	return func(ec *ExecutionContext) { ec.ParseOptions = &opts }
}

func WithValidationRules(r *rules.Rules) Option {
	return func(ec *ExecutionContext) { ec.ValidationRules = r }
}

func WithOperationExtensions(ext map[string]any) Option {
	return func(ec *ExecutionContext) { ec.OperationExtensions = ext }
}

// New returns a pending context for query.
func New(query string, s *schema.Schema, allowed []language.Operation, opts ...Option) *ExecutionContext {
	ec := &ExecutionContext{
		Query:             query,
		Schema:            s,
		AllowedOperations: slices.Clone(allowed),
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// OperationName returns the provided operation name, or else the name of the
// first operation in the document. It reports false for anonymous
// operations and when there is no document.
func (ec *ExecutionContext) OperationName() (string, bool) {
	if ec.ProvidedOperationName != nil {
		return *ec.ProvidedOperationName, true
	}
	op := ec.firstOperation()
	if op == nil || op.Name == "" {
		return "", false
	}
	return op.Name, true
}

// OperationType returns the kind of the operation that will run.
func (ec *ExecutionContext) OperationType() (language.Operation, error) {
	op, err := ec.Operation()
	if err != nil {
		return "", err
	}
	return op.Operation, nil
}

// Operation returns the definition of the operation that will run.
func (ec *ExecutionContext) Operation() (*language.OperationDefinition, error) {
	if ec.Document == nil {
		return nil, &MissingDocumentError{}
	}
	name, ok := ec.OperationName()
	if !ok {
		if op := ec.firstOperation(); op != nil {
			return op, nil
		}
		return nil, &UnknownOperationError{}
	}
	if op := ec.Document.Operations.ForName(name); op != nil && op.Name == name {
		return op, nil
	}
	return nil, &UnknownOperationError{Name: name}
}

func (ec *ExecutionContext) firstOperation() *language.OperationDefinition {
	if ec.Document == nil || len(ec.Document.Operations) == 0 {
		return nil
	}
	return ec.Document.Operations[0]
}

// IsAllowed reports whether op is one of the allowed operation kinds.
func (ec *ExecutionContext) IsAllowed(op language.Operation) bool {
	return slices.Contains(ec.AllowedOperations, op)
}

func (ec *ExecutionContext) GetParseOptions() ParseOptions {
	if ec.ParseOptions == nil {
		return ParseOptions{}
	}
	return *ec.ParseOptions
}

// GetValidationRules returns the configured rules or the standard set.
func (ec *ExecutionContext) GetValidationRules() *rules.Rules {
	if ec.ValidationRules == nil {
		return rules.NewDefaultRules()
	}
	return ec.ValidationRules
}

// GetExtensionsResults returns the extension results. Without any it
// returns a fresh empty map; ec is not modified.
func (ec *ExecutionContext) GetExtensionsResults() map[string]any {
	if ec.ExtensionsResults == nil {
		return map[string]any{}
	}
	return ec.ExtensionsResults
}

// SetExtensionResult records one extension result, reported under key in
// the response extensions.
func (ec *ExecutionContext) SetExtensionResult(key string, v any) {
	if ec.ExtensionsResults == nil {
		ec.ExtensionsResults = map[string]any{}
	}
	ec.ExtensionsResults[key] = v
}

// Errors returns PreExecutionErrors.
//
// Deprecated: use PreExecutionErrors.
func (ec *ExecutionContext) Errors() gqlerror.List {
	return ec.PreExecutionErrors
}

func (ec *ExecutionContext) State() State {
	if ec.Result == nil {
		return Pending
	}
	return Completed
}

// Complete stores the result of the operation. It fails if r is nil or a
// result was already stored.
func (ec *ExecutionContext) Complete(r Result) error {
	if r == nil {
		return ErrNilResult
	}
	if ec.Result != nil {
		return ErrAlreadyCompleted
	}
	ec.Result = r
	return nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying ec.
func NewContext(ctx context.Context, ec *ExecutionContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ec)
}

// FromContext returns the ExecutionContext carried by ctx.
func FromContext(ctx context.Context) (*ExecutionContext, bool) {
	ec, ok := ctx.Value(contextKey{}).(*ExecutionContext)
	return ec, ok
}
