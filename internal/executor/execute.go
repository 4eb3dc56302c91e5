package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/events"
	"github.com/hanpama/fieldgraph/internal/execution"
	"github.com/hanpama/fieldgraph/internal/language"
)

// ErrOperationNotAllowed is wrapped by the error reported when the selected
// operation kind is not in the context's allowed set.
var ErrOperationNotAllowed = errors.New("operation not allowed")

// ErrNoQuery is wrapped by the error reported when there is neither query
// text nor a document.
var ErrNoQuery = errors.New("no query provided")

// Execute runs the operation described by ec and stores the result on it.
// A context that already has a result is returned unchanged.
//
// Execution stops before any resolver runs when the query does not parse,
// the operation cannot be found or is not allowed, validation fails or the
// variables cannot be coerced. The result is then a
// *execution.PreExecutionError and the same errors are kept in
// ec.PreExecutionErrors.
func (e *Executor) Execute(ctx context.Context, ec *execution.ExecutionContext) execution.Result {
	if ec.State() == execution.Completed {
		return ec.Result
	}
	start := time.Now()

	var (
		result execution.Result
		opName string
		opType string
	)
	op, errs := e.prepare(ec)
	if op != nil {
		opName, opType = op.Name, string(op.Operation)
		eventbus.Publish(ctx, events.OperationStart{OperationName: opName, OperationType: opType})
	}
	if errs == nil {
		res, err := e.executeOperation(execution.NewContext(ctx, ec), ec.Document, op, ec.Variables, ec.RootValue)
		if err != nil {
			errs = gqlerror.List{err}
		} else {
			res.Extensions = ec.ExtensionsResults
			result = res
		}
	}
	if errs != nil {
		ec.PreExecutionErrors = errs
		pre := execution.NewPreExecutionError(errs)
		pre.Extensions = ec.ExtensionsResults
		result = pre
	}

	if err := ec.Complete(result); err != nil {
		e.opts.logger.WarnContext(ctx, "execution context completed concurrently", "error", err)
		return ec.Result
	}
	eventbus.Publish(ctx, events.OperationFinish{
		OperationName: opName,
		OperationType: opType,
		Errors:        execution.Unwrap(result).Errors,
		PreExecution:  execution.IsPreExecution(result),
		Duration:      time.Since(start),
	})
	return result
}

// prepare parses and validates ec, returning the operation to run. The
// operation is also returned alongside errors when it was determined.
func (e *Executor) prepare(ec *execution.ExecutionContext) (*language.OperationDefinition, gqlerror.List) {
	if ec.Document == nil {
		if ec.Query == "" {
			return nil, gqlerror.List{gqlerror.Wrap(ErrNoQuery)}
		}
		doc, err := language.ParseQueryWithOptions(ec.Query, ec.GetParseOptions().MaxTokens)
		if err != nil {
			return nil, gqlerror.List{gqlerror.WrapIfUnwrapped(err)}
		}
		ec.Document = doc
	}

	op, err := ec.Operation()
	if err != nil {
		var unknown *execution.UnknownOperationError
		if errors.As(err, &unknown) && unknown.Name != "" {
			return nil, gqlerror.List{gqlerror.Errorf("unknown operation named %q", unknown.Name)}
		}
		return nil, gqlerror.List{gqlerror.Wrap(err)}
	}
	if !ec.IsAllowed(op.Operation) {
		return op, gqlerror.List{{
			Err:     ErrOperationNotAllowed,
			Message: fmt.Sprintf("%s operations are not allowed", op.Operation),
		}}
	}

	sch, err := ec.Schema.AST()
	if err != nil {
		return op, gqlerror.List{gqlerror.Wrap(err)}
	}
	if errs := validator.ValidateWithRules(sch, ec.Document, ec.GetValidationRules()); len(errs) > 0 {
		if e.opts.hideSuggestions {
			stripSuggestions(errs)
		}
		return op, errs
	}
	return op, nil
}

func stripSuggestions(errs gqlerror.List) {
	for _, err := range errs {
		if i := strings.Index(err.Message, " Did you mean"); i >= 0 {
			err.Message = err.Message[:i]
		}
	}
}
