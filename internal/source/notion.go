// Package source reads due tasks from the Notion queue and writes lifecycle
// results back. It owns the wire format; everything above it works with
// task.Task values.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"proofline/internal/config"
	"proofline/internal/task"
)

const (
	notionVersion = "2022-06-28"

	// maxNoteLength is the queue's limit for the proof note field.
	maxNoteLength = 2000
)

// Notion is the queue client. One value serves a whole sweep; it keeps no
// per-task state.
type Notion struct {
	baseURL    string
	token      string
	databaseID string
	http       *http.Client
	logger     *logrus.Logger
	now        func() time.Time
}

// Option customizes the client during construction.
type Option func(*Notion)

// WithClock overrides the clock used for the due-date filter.
func WithClock(clock func() time.Time) Option {
	return func(n *Notion) {
		n.now = clock
	}
}

// NewNotion builds a queue client from the run configuration.
func NewNotion(cfg config.Config, logger *logrus.Logger, opts ...Option) *Notion {
	n := &Notion{
		baseURL:    cfg.NotionBaseURL,
		token:      cfg.NotionToken,
		databaseID: cfg.NotionDatabaseID,
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type statusFilter struct {
	Property string `json:"property"`
	Select   struct {
		Equals string `json:"equals"`
	} `json:"select"`
}

type dueFilter struct {
	Property string `json:"property"`
	Date     struct {
		OnOrBefore string `json:"on_or_before"`
	} `json:"date"`
}

type queryRequest struct {
	Filter struct {
		And []any `json:"and"`
	} `json:"filter"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// FetchDue returns the queued tasks due on or before today. The filter is
// applied server-side; pages that fail to parse or no longer satisfy the
// eligibility rule are skipped with a warning rather than failing the sweep.
func (n *Notion) FetchDue(ctx context.Context) ([]task.Task, error) {
	today := n.now()
	var tasks []task.Task
	cursor := ""
	for {
		resp, err := n.queryPage(ctx, today, cursor)
		if err != nil {
			return nil, err
		}
		for _, p := range resp.Results {
			t, err := p.toTask()
			if err != nil {
				n.logger.WithError(err).WithField("page", p.ID).Warn("skipping unparseable queue record")
				continue
			}
			if !t.Eligible(today) {
				n.logger.WithField("page", p.ID).Warn("skipping record that is no longer eligible")
				continue
			}
			tasks = append(tasks, t)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return tasks, nil
}

func (n *Notion) queryPage(ctx context.Context, today time.Time, cursor string) (queryResponse, error) {
	var status statusFilter
	status.Property = "Status"
	status.Select.Equals = string(task.StatusQueued)

	var due dueFilter
	due.Property = "Due"
	due.Date.OnOrBefore = today.Format("2006-01-02")

	var req queryRequest
	req.Filter.And = []any{status, due}
	req.StartCursor = cursor

	var resp queryResponse
	endpoint := fmt.Sprintf("%s/v1/databases/%s/query", n.baseURL, n.databaseID)
	if err := n.call(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return queryResponse{}, fmt.Errorf("source: query queue: %w", err)
	}
	return resp, nil
}

// MarkRunning sets a task's status to Running before processing starts. A
// later crash leaves the record Running on purpose: the eligibility filter
// will not reselect it, and recovery is a manual decision.
func (n *Notion) MarkRunning(ctx context.Context, id string) error {
	props := map[string]any{
		"Status":    selectProp(string(task.StatusRunning)),
		"ProofNote": richTextProp("agent started"),
	}
	if err := n.patchPage(ctx, id, props); err != nil {
		return fmt.Errorf("source: mark running %s: %w", id, err)
	}
	return nil
}

// WriteResult persists the terminal state for one processing attempt.
func (n *Notion) WriteResult(ctx context.Context, id string, res task.Result) error {
	props := map[string]any{
		"Status": selectProp(string(res.Status)),
	}
	if res.ProofURL != nil {
		props["ProofURL"] = map[string]any{"url": *res.ProofURL}
	}
	if res.Confidence != nil {
		props["Confidence"] = map[string]any{"number": *res.Confidence}
	}
	if res.Note != "" {
		props["ProofNote"] = richTextProp(truncateNote(res.Note))
	}
	if err := n.patchPage(ctx, id, props); err != nil {
		return fmt.Errorf("source: write result %s: %w", id, err)
	}
	return nil
}

func (n *Notion) patchPage(ctx context.Context, id string, props map[string]any) error {
	payload := map[string]any{"properties": props}
	endpoint := fmt.Sprintf("%s/v1/pages/%s", n.baseURL, id)
	return n.call(ctx, http.MethodPatch, endpoint, payload, nil)
}

func (n *Notion) call(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"rich_text": []any{
			map[string]any{
				"type": "text",
				"text": map[string]any{"content": text},
			},
		},
	}
}

func truncateNote(note string) string {
	if len(note) <= maxNoteLength {
		return note
	}
	return note[:maxNoteLength]
}

func snippet(data []byte) string {
	const max = 200
	if len(data) > max {
		data = data[:max]
	}
	return string(data)
}
