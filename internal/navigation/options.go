package navigation

import (
	"github.com/zjrosen/twinview/internal/binding"
)

// Option customizes a single navigation request.
type Option func(*request)

// WithID selects a specific registration of the view-model's view.
func WithID(id string) Option {
	return func(r *request) { r.id = id }
}

// WithMode sets the binding mode. The default is binding.TwoWay.
func WithMode(mode binding.Mode) Option {
	return func(r *request) { r.mode = mode }
}

type request struct {
	vm       any
	id       string
	mode     binding.Mode
	recovery bool
	// fallback is the path used when a recovery's view-model no longer resolves.
	fallback string
}

func newRequest(vm any, opts []Option) *request {
	r := &request{vm: vm, mode: binding.TwoWay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
