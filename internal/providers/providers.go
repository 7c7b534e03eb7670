package providers

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the model service could not be reached or
	// answered with a non-2xx status.
	ErrUnavailable = errors.New("model service unavailable")
	// ErrBadResponse means the service answered but the envelope could not
	// be decoded.
	ErrBadResponse = errors.New("malformed model response")
)

// Config represents the configuration for a single generation call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// JSON asks the provider to constrain output to a JSON object when it
	// supports doing so.
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, config Config) (string, error)
}
