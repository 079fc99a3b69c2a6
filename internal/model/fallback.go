package model

import (
	"context"

	"proofline/internal/prompt"
)

const fallbackTitle = "Offline Draft"

// OfflineInvoker is the deterministic stand-in used when the provider is
// unreachable or unconfigured. It keeps the rest of the pipeline exercisable
// without live credentials: non-empty text, confidence zero so nothing
// auto-publishes, a fixed title.
type OfflineInvoker struct{}

// Invoke returns the stand-in result. Identical prompts yield identical
// results on every call.
func (OfflineInvoker) Invoke(_ context.Context, spec prompt.Spec) (Result, error) {
	excerpt := spec.User
	if len(excerpt) > 2000 {
		excerpt = excerpt[:2000]
	}
	zero := 0.0
	return Result{
		Text:       "[OFFLINE DRAFT]\n\n" + excerpt,
		Confidence: &zero,
		Title:      fallbackTitle,
	}, nil
}
