package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LocalStore writes proof documents into a spool directory when no document
// backend is configured, so the pipeline stays exercisable without
// credentials and the proof-link invariant still holds.
type LocalStore struct {
	dir string
	run string
	now func() time.Time
}

// LocalOption customizes a LocalStore during construction.
type LocalOption func(*LocalStore)

// WithRunID stamps the run identifier into each document's metadata.
func WithRunID(id string) LocalOption {
	return func(s *LocalStore) {
		s.run = id
	}
}

// WithClock overrides the clock used for metadata timestamps.
func WithClock(clock func() time.Time) LocalOption {
	return func(s *LocalStore) {
		s.now = clock
	}
}

// NewLocalStore builds a store rooted at dir.
func NewLocalStore(dir string, opts ...LocalOption) *LocalStore {
	store := &LocalStore{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

type localEnvelope struct {
	Proofline localMetadata `yaml:"proofline"`
}

type localMetadata struct {
	Document string `yaml:"document"`
	Title    string `yaml:"title"`
	Created  string `yaml:"created"`
	Run      string `yaml:"run,omitempty"`
}

// Create writes the text verbatim below a YAML metadata fence and returns a
// file link. A failed write returns no handle.
func (s *LocalStore) Create(_ context.Context, title, text string) (Doc, error) {
	id := uuid.NewString()
	meta := localMetadata{
		Document: id,
		Title:    title,
		Created:  s.now().UTC().Format(time.RFC3339),
		Run:      s.run,
	}
	header, err := yaml.Marshal(localEnvelope{Proofline: meta})
	if err != nil {
		return Doc{}, fmt.Errorf("artifact: encode metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(header, "\n"))
	buf.WriteString("\n---\n\n")
	buf.WriteString(text)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Doc{}, fmt.Errorf("artifact: ensure spool dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", slug(title), id[:8])
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Doc{}, fmt.Errorf("artifact: write document: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Doc{ID: id, URL: "file://" + abs}, nil
}

func slug(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := true
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
