// Package orchestrator drives the query -> process -> update cycle per task.
// It owns the confidence-gating decision and keeps every failure contained
// to the task it belongs to.
package orchestrator

import (
	"context"

	"github.com/sirupsen/logrus"

	"proofline/internal/artifact"
	"proofline/internal/model"
	"proofline/internal/prompt"
	"proofline/internal/task"
)

// TaskSource is the queue contract the orchestrator depends on.
type TaskSource interface {
	FetchDue(ctx context.Context) ([]task.Task, error)
	MarkRunning(ctx context.Context, id string) error
	WriteResult(ctx context.Context, id string, res task.Result) error
}

// FailurePolicy decides the terminal status for failed attempts. The
// boundary is deliberately configurable: pre-artifact failures produced no
// document, post-artifact failures left one behind that a human can review.
type FailurePolicy struct {
	PreArtifact  task.Status
	PostArtifact task.Status
}

// DefaultFailurePolicy blocks tasks that produced nothing and routes tasks
// with an existing document to review.
func DefaultFailurePolicy() FailurePolicy {
	return FailurePolicy{
		PreArtifact:  task.StatusBlocked,
		PostArtifact: task.StatusNeedsReview,
	}
}

// Orchestrator processes one sweep of due tasks, sequentially.
type Orchestrator struct {
	source   TaskSource
	prompts  *prompt.Builder
	invoker  model.Invoker
	store    artifact.Store
	fallback model.Invoker
	policy   FailurePolicy
	logger   *logrus.Logger
	runID    string
}

// Option customizes an Orchestrator during construction.
type Option func(*Orchestrator)

// WithFailurePolicy overrides the Blocked/NeedsReview boundary.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithFallback installs the invoker used when the provider is unavailable.
func WithFallback(inv model.Invoker) Option {
	return func(o *Orchestrator) {
		o.fallback = inv
	}
}

// WithRunID stamps a run identifier into logs.
func WithRunID(id string) Option {
	return func(o *Orchestrator) {
		o.runID = id
	}
}

// New wires the orchestrator to its three collaborators.
func New(source TaskSource, prompts *prompt.Builder, invoker model.Invoker, store artifact.Store, logger *logrus.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		prompts:  prompts,
		invoker:  invoker,
		store:    store,
		fallback: model.OfflineInvoker{},
		policy:   DefaultFailurePolicy(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Outcome records how one task left the sweep.
type Outcome struct {
	Task       task.Task
	Status     task.Status
	ProofURL   string
	Confidence float64
	Note       string
	// Err carries the operational failure, if any. It never reaches the
	// queue; the note is the only surfaced explanation.
	Err error
}
