package events

import "time"

// ResolverStart is emitted before a field resolver is called.
type ResolverStart struct {
	ObjectType string
	Field      string
}

// ResolverFinish is emitted after a field resolver returns.
type ResolverFinish struct {
	ObjectType string
	Field      string
	Err        error
	Duration   time.Duration
}
