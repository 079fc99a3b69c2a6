package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"proofline/internal/artifact"
	"proofline/internal/logging"
	"proofline/internal/model"
	"proofline/internal/prompt"
	"proofline/internal/task"
)

type fakeSource struct {
	tasks    []task.Task
	fetchErr error
	markErr  map[string]error
	writeErr map[string]error
	marked   []string
	written  map[string][]task.Result
}

func newFakeSource(tasks ...task.Task) *fakeSource {
	return &fakeSource{
		tasks:    tasks,
		markErr:  map[string]error{},
		writeErr: map[string]error{},
		written:  map[string][]task.Result{},
	}
}

func (s *fakeSource) FetchDue(ctx context.Context) ([]task.Task, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.tasks, nil
}

func (s *fakeSource) MarkRunning(ctx context.Context, id string) error {
	if err := s.markErr[id]; err != nil {
		return err
	}
	s.marked = append(s.marked, id)
	return nil
}

func (s *fakeSource) WriteResult(ctx context.Context, id string, res task.Result) error {
	s.written[id] = append(s.written[id], res)
	return s.writeErr[id]
}

type fakeInvoker struct {
	result model.Result
	err    error
	calls  int
}

func (f *fakeInvoker) Invoke(ctx context.Context, spec prompt.Spec) (model.Result, error) {
	f.calls++
	if f.err != nil {
		return model.Result{}, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	err   error
	calls int
	docs  []artifact.Doc
}

func (f *fakeStore) Create(ctx context.Context, title, text string) (artifact.Doc, error) {
	f.calls++
	if f.err != nil {
		return artifact.Doc{}, f.err
	}
	doc := artifact.Doc{
		ID:  fmt.Sprintf("doc-%d", f.calls),
		URL: fmt.Sprintf("https://docs.example.test/doc-%d", f.calls),
	}
	f.docs = append(f.docs, doc)
	return doc, nil
}

func queuedTask(id string, mode task.PublishMode, gate float64) task.Task {
	return task.Task{
		ID:             id,
		Title:          "Digest " + id,
		AgentType:      task.AgentContent,
		PublishMode:    mode,
		ConfidenceGate: &gate,
		Status:         task.StatusQueued,
	}
}

func modelResult(confidence float64) model.Result {
	return model.Result{Text: "draft body", Confidence: &confidence, Title: "Digest"}
}

func newOrchestrator(src TaskSource, inv model.Invoker, store artifact.Store, opts ...Option) *Orchestrator {
	builder := prompt.NewBuilder(prompt.DefaultPreamble(), prompt.Builtin())
	return New(src, builder, inv, store, logging.New("error"), opts...)
}

func singleResult(t *testing.T, src *fakeSource, id string) task.Result {
	t.Helper()
	results := src.written[id]
	if len(results) != 1 {
		t.Fatalf("expected exactly one write for %s, got %d", id, len(results))
	}
	return results[0]
}

// Scenario A: Auto mode, confidence above the gate -> Done with proof link.
func TestSweepAutoPublishAboveGate(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{}
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.9)}, store)

	outcomes, err := orc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusDone {
		t.Fatalf("expected Done, got %s", res.Status)
	}
	if res.ProofURL == nil || *res.ProofURL == "" {
		t.Fatalf("proof URL must be set on success")
	}
	if res.Confidence == nil || *res.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: %+v", res.Confidence)
	}
	if outcomes[0].Status != task.StatusDone {
		t.Fatalf("outcome mismatch: %+v", outcomes[0])
	}
}

// Scenario B: same task, confidence below the gate -> NeedsReview, proof still set.
func TestSweepBelowGateStillPersistsArtifact(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{}
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.5)}, store)

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusNeedsReview {
		t.Fatalf("expected NeedsReview, got %s", res.Status)
	}
	if res.ProofURL == nil {
		t.Fatalf("artifact must be persisted independent of gating")
	}
	if store.calls != 1 {
		t.Fatalf("expected one artifact creation, got %d", store.calls)
	}
}

// Scenario C: provider unavailable -> offline fallback, NeedsReview, note records it.
func TestSweepProviderUnavailableUsesFallback(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{}
	orc := newOrchestrator(src, &fakeInvoker{err: model.ErrProviderUnavailable}, store)

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusNeedsReview {
		t.Fatalf("expected NeedsReview, got %s", res.Status)
	}
	if res.Confidence == nil || *res.Confidence != 0 {
		t.Fatalf("fallback confidence must be zero, got %+v", res.Confidence)
	}
	if res.ProofURL == nil {
		t.Fatalf("fallback output must still produce an artifact")
	}
	if !strings.Contains(res.Note, "offline fallback used") {
		t.Fatalf("note must record fallback use: %q", res.Note)
	}
}

// Scenario D: document store fails -> Blocked, no proof URL, note records it.
func TestSweepArtifactFailureBlocks(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{err: errors.New("quota exceeded")}
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.9)}, store)

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusBlocked {
		t.Fatalf("expected Blocked, got %s", res.Status)
	}
	if res.ProofURL != nil {
		t.Fatalf("proof URL must stay unset when creation failed")
	}
	if !strings.Contains(res.Note, "artifact") {
		t.Fatalf("note must record artifact failure: %q", res.Note)
	}
}

func TestSweepMalformedResponseFailsTask(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{}
	orc := newOrchestrator(src, &fakeInvoker{err: model.ErrMalformedResponse}, store)

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusBlocked {
		t.Fatalf("expected Blocked, got %s", res.Status)
	}
	if store.calls != 0 {
		t.Fatalf("no artifact should be created for a failed invocation")
	}
	if !strings.Contains(res.Note, "malformed response") {
		t.Fatalf("note must name the failure: %q", res.Note)
	}
}

func TestSweepAuthErrorFailsTask(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	orc := newOrchestrator(src, &fakeInvoker{err: model.ErrAuth}, &fakeStore{})

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusBlocked {
		t.Fatalf("expected Blocked, got %s", res.Status)
	}
	if !strings.Contains(res.Note, "auth rejected") {
		t.Fatalf("note must name the failure: %q", res.Note)
	}
}

func TestSweepMissingGateNeverAutoPublishes(t *testing.T) {
	tk := queuedTask("t1", task.PublishAuto, 0)
	tk.ConfidenceGate = nil
	src := newFakeSource(tk)
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.99)}, &fakeStore{})

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusNeedsReview {
		t.Fatalf("missing gate must never auto-publish, got %s", res.Status)
	}
}

func TestSweepMissingConfidenceTreatedAsZero(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.1))
	inv := &fakeInvoker{result: model.Result{Text: "draft", Title: "Digest"}}
	orc := newOrchestrator(src, inv, &fakeStore{})

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusNeedsReview {
		t.Fatalf("missing confidence must gate as zero, got %s", res.Status)
	}
	if res.Confidence == nil || *res.Confidence != 0 {
		t.Fatalf("written confidence should be zero, got %+v", res.Confidence)
	}
}

func TestSweepManualModeNeverAutoPublishes(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishNeedsReview, 0.1))
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.99)}, &fakeStore{})

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	res := singleResult(t, src, "t1")
	if res.Status != task.StatusNeedsReview {
		t.Fatalf("manual publish mode must hold for review, got %s", res.Status)
	}
	if res.ProofURL == nil {
		t.Fatalf("artifact must still be persisted")
	}
}

func TestSweepMarkRunningFailureSkipsTask(t *testing.T) {
	src := newFakeSource(
		queuedTask("t1", task.PublishAuto, 0.7),
		queuedTask("t2", task.PublishAuto, 0.7),
	)
	src.markErr["t1"] = errors.New("queue write refused")
	inv := &fakeInvoker{result: modelResult(0.9)}
	orc := newOrchestrator(src, inv, &fakeStore{})

	outcomes, err := orc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(src.written["t1"]) != 0 {
		t.Fatalf("a task that never started must not receive a result write")
	}
	if outcomes[0].Err == nil || outcomes[0].Status != task.StatusQueued {
		t.Fatalf("skipped task should stay Queued with an error: %+v", outcomes[0])
	}
	if res := singleResult(t, src, "t2"); res.Status != task.StatusDone {
		t.Fatalf("remaining tasks must still be processed: %+v", res)
	}
}

func TestSweepContainsPerTaskFailures(t *testing.T) {
	src := newFakeSource(
		queuedTask("t1", task.PublishAuto, 0.7),
		queuedTask("t2", task.PublishAuto, 0.7),
		queuedTask("t3", task.PublishAuto, 0.7),
	)
	src.writeErr["t2"] = errors.New("queue write refused")
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.9)}, &fakeStore{})

	outcomes, err := orc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("all tasks must be attempted, got %d outcomes", len(outcomes))
	}
	if outcomes[1].Err == nil {
		t.Fatalf("write failure should surface in the outcome")
	}
	for _, id := range []string{"t1", "t3"} {
		if res := singleResult(t, src, id); res.Status != task.StatusDone {
			t.Fatalf("%s should complete despite t2 failing: %+v", id, res)
		}
	}
}

func TestSweepWritesExactlyOncePerTask(t *testing.T) {
	src := newFakeSource(
		queuedTask("ok", task.PublishAuto, 0.7),
		queuedTask("gated", task.PublishAuto, 0.99),
		queuedTask("fallback", task.PublishAuto, 0.7),
	)
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.9)}, &fakeStore{})
	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	for id, writes := range src.written {
		if len(writes) != 1 {
			t.Fatalf("%s written %d times, want exactly 1", id, len(writes))
		}
		if !writes[0].Status.Terminal() {
			t.Fatalf("%s ended in non-terminal status %s", id, writes[0].Status)
		}
	}
}

func TestSweepFetchFailureAbortsBeforeAnyTask(t *testing.T) {
	src := newFakeSource()
	src.fetchErr = errors.New("queue unreachable")
	orc := newOrchestrator(src, &fakeInvoker{}, &fakeStore{})

	if _, err := orc.Sweep(context.Background()); err == nil {
		t.Fatalf("expected fetch error to abort the sweep")
	}
	if len(src.marked) != 0 || len(src.written) != 0 {
		t.Fatalf("no task may be touched when the fetch fails")
	}
}

func TestFailurePolicyIsConfigurable(t *testing.T) {
	src := newFakeSource(queuedTask("t1", task.PublishAuto, 0.7))
	store := &fakeStore{err: errors.New("quota")}
	policy := FailurePolicy{PreArtifact: task.StatusNeedsReview, PostArtifact: task.StatusNeedsReview}
	orc := newOrchestrator(src, &fakeInvoker{result: modelResult(0.9)}, store, WithFailurePolicy(policy))

	if _, err := orc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res := singleResult(t, src, "t1"); res.Status != task.StatusNeedsReview {
		t.Fatalf("configured policy not applied: %+v", res)
	}
}
