// Package artifact persists generated text as a proof document and exposes a
// public read link. Gating never reaches into this package: an artifact is
// created whenever the model produced output, regardless of the publish
// decision.
package artifact

import (
	"context"
)

// Doc is a handle to a persisted proof document. A Doc is only ever returned
// when every creation step succeeded; there are no partial handles.
type Doc struct {
	ID  string
	URL string
}

// Store is implemented by document backends.
type Store interface {
	// Create persists the text verbatim under the given title, applies the
	// store's fixed visibility policy, and returns the public link.
	Create(ctx context.Context, title, text string) (Doc, error)
}
