// Package engine forwards gateway operations to the external translation engine.
package engine

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnavailable is returned by a transport that refuses to call the engine,
// e.g. while its circuit breaker is open.
var ErrUnavailable = errors.New("translation engine unavailable")

// Reply is a raw engine response.
type Reply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the engine answered with a 2xx status.
func (r *Reply) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Transport delivers a JSON payload to an engine path and returns the reply.
// A non-nil error means no reply was obtained; engine-reported failures come
// back as a Reply with a non-2xx status.
type Transport interface {
	Post(ctx context.Context, path string, payload any) (*Reply, error)
}
