// Package reqid carries a per-request identifier through contexts.
package reqid

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
)

// Header is the HTTP header a request ID is read from and echoed in.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent carrying a new random, positive
// request ID, and the ID.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int64N(math.MaxInt64) + 1
	return WithID(parent, id), id
}

// WithID returns a copy of parent carrying id.
func WithID(parent context.Context, id int64) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the request ID from ctx.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}

// Parse reads an ID in the form Format writes. Zero and negative values
// are rejected.
func Parse(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func Format(id int64) string { return strconv.FormatInt(id, 10) }
