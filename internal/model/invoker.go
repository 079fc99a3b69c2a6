// Package model invokes the language model and turns its reply into a typed
// result. The failure taxonomy here drives the orchestrator's fallback and
// terminal-status decisions.
package model

import (
	"context"
	"errors"

	"proofline/internal/prompt"
)

// Result is the structured payload the model must return for a task.
type Result struct {
	Text string
	// Confidence is nil when the payload omitted it; the default of zero is
	// applied at the gating step, not here.
	Confidence *float64
	Title      string
}

// Invoker is implemented by model providers.
type Invoker interface {
	Invoke(ctx context.Context, spec prompt.Spec) (Result, error)
}

var (
	// ErrProviderUnavailable signals the provider could not be reached; the
	// orchestrator degrades to the offline fallback instead of failing.
	ErrProviderUnavailable = errors.New("model: provider unavailable")

	// ErrMalformedResponse signals no well-formed payload was found in the
	// provider's reply.
	ErrMalformedResponse = errors.New("model: malformed response")

	// ErrAuth signals the provider rejected the credentials.
	ErrAuth = errors.New("model: authentication rejected")
)
