package job

import (
	"context"
	"fmt"

	"github.com/wp-media/background-processing/codec"
)

// Definition is a typed job with a handler function. T is the payload type
// and must round-trip through the definition's codec (JSON by default).
// Definition implements Job: Execute decodes the wire payload into T and
// calls the handler.
type Definition[T any] struct {
	name    string
	handler func(ctx context.Context, payload T) error
	codec   codec.Codec
}

// Option configures a Definition.
type Option func(*config)

type config struct {
	codec codec.Codec
}

// WithCodec sets the payload codec for the definition. The dispatcher
// encodes outbound payloads with the same codec, keeping both sides of the
// self-call on one wire format.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// NewDefinition creates a typed job definition.
func NewDefinition[T any](name string, handler func(ctx context.Context, payload T) error, opts ...Option) *Definition[T] {
	cfg := config{codec: &codec.JSON{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Definition[T]{
		name:    name,
		handler: handler,
		codec:   cfg.codec,
	}
}

func (d *Definition[T]) Name() string { return d.name }

// Codec returns the definition's payload codec.
func (d *Definition[T]) Codec() codec.Codec { return d.codec }

// Execute decodes payload into T and calls the typed handler.
// An empty payload yields the zero value of T.
func (d *Definition[T]) Execute(ctx context.Context, payload []byte) error {
	var t T
	if len(payload) > 0 {
		if err := d.codec.Decode(payload, &t); err != nil {
			return fmt.Errorf("job %q: decode payload: %w", d.name, err)
		}
	}
	return d.handler(ctx, t)
}
