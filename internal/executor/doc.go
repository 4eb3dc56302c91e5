// Package executor executes GraphQL operations against a built schema.
//
// # Execution model
//
// Execution is breadth first. Fields without a resolver are sync: they are
// resolved on the spot through Runtime.ResolveSync and completed in the same
// pass, so purely sync descents never add depth. Fields with a resolver are
// async: they are queued and resolved together through one
// Runtime.BatchResolveAsync call per depth. For an operation whose async depth
// is d the runtime therefore sees exactly d batches.
//
// Mutation root fields are the exception. Each root field of a mutation is
// resolved and completed, async descendants included, before the next one
// starts.
//
// # Completion
//
// Values are completed according to their declared type. Lists are completed
// per item, leaves go through Runtime.SerializeLeafValue and interface or union
// values through Runtime.ResolveType. Fragment type conditions match the
// concrete type, its interfaces and the unions containing it.
//
// A null in a Non-Null position nulls the enclosing object. For async fields
// the null goes to the top level field that contains it. Queued work below a
// nulled path is dropped before the next batch.
//
// # Operations
//
// Execute drives a whole operation from an execution.ExecutionContext: it
// parses, checks the operation type against the allowed set, validates and
// executes, and records the result on the context. Failures before any
// resolver runs are reported as an execution.PreExecutionError.
package executor
