// Package events defines the lifecycle events published on the eventbus.
// Each event is published with the context of the work it describes.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the GraphQL endpoint receives a request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the response is written. Operations is the
// number of operations the request carried; batches carry more than one.
type HTTPFinish struct {
	Request    *http.Request
	Status     int
	Operations int
	Duration   time.Duration
}
