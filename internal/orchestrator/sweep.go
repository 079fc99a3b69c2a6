package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"proofline/internal/model"
	"proofline/internal/task"
)

// Sweep fetches the currently due tasks and drives each one to a terminal
// state, sequentially. Per-task failures are contained; only a failed fetch
// aborts the sweep, since no task was selected yet.
func (o *Orchestrator) Sweep(ctx context.Context) ([]Outcome, error) {
	tasks, err := o.source.FetchDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: fetch due tasks: %w", err)
	}
	o.logger.WithFields(logrus.Fields{"run": o.runID, "tasks": len(tasks)}).Info("sweep started")

	outcomes := make([]Outcome, 0, len(tasks))
	for _, t := range tasks {
		outcome := o.process(ctx, t)
		o.logOutcome(outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// process drives one task through the lifecycle: mark running, attempt,
// write the terminal record exactly once.
func (o *Orchestrator) process(ctx context.Context, t task.Task) Outcome {
	if err := o.source.MarkRunning(ctx, t.ID); err != nil {
		// The task is still Queued; it keeps its attempt for the next sweep.
		return Outcome{Task: t, Status: t.Status, Err: fmt.Errorf("orchestrator: mark running: %w", err)}
	}

	result, attemptErr := o.attempt(ctx, t)

	outcome := Outcome{Task: t, Status: result.Status, Note: result.Note, Err: attemptErr}
	if result.ProofURL != nil {
		outcome.ProofURL = *result.ProofURL
	}
	if result.Confidence != nil {
		outcome.Confidence = *result.Confidence
	}

	if err := o.source.WriteResult(ctx, t.ID, result); err != nil {
		outcome.Err = errors.Join(attemptErr, fmt.Errorf("orchestrator: write result: %w", err))
	}
	return outcome
}

// attempt runs the model and artifact steps and resolves the terminal
// record. It always returns a complete Result; errors describe what went
// wrong operationally but never abort the write-back.
func (o *Orchestrator) attempt(ctx context.Context, t task.Task) (task.Result, error) {
	spec := o.prompts.Build(t)
	var notes []string

	res, err := o.invoker.Invoke(ctx, spec)
	if errors.Is(err, model.ErrProviderUnavailable) && o.fallback != nil {
		notes = append(notes, "model: provider unavailable; offline fallback used")
		res, err = o.fallback.Invoke(ctx, spec)
	}
	if err != nil {
		return task.Result{
			Status: o.policy.PreArtifact,
			Note:   joinNotes(append(notes, modelFailureNote(err))),
		}, err
	}

	title := res.Title
	if strings.TrimSpace(title) == "" {
		title = t.Title
	}
	text := res.Text
	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("(empty output for %s)", t.Title)
	}

	doc, err := o.store.Create(ctx, title, text)
	if err != nil {
		return task.Result{
			Status: o.policy.PreArtifact,
			Note:   joinNotes(append(notes, "artifact: create failed")),
		}, fmt.Errorf("orchestrator: create artifact: %w", err)
	}

	confidence := 0.0
	if res.Confidence != nil {
		confidence = *res.Confidence
	}
	gate := t.Gate()

	status := o.policy.PostArtifact
	if t.PublishMode == task.PublishAuto && confidence >= gate {
		status = task.StatusDone
	}
	notes = append(notes, fmt.Sprintf("output posted; gate=%.2f conf=%.2f", gate, confidence))

	return task.Result{
		Status:     status,
		ProofURL:   &doc.URL,
		Confidence: &confidence,
		Note:       joinNotes(notes),
	}, nil
}

func modelFailureNote(err error) string {
	switch {
	case errors.Is(err, model.ErrAuth):
		return "model: auth rejected"
	case errors.Is(err, model.ErrMalformedResponse):
		return "model: malformed response"
	default:
		return "model: invocation failed"
	}
}

func joinNotes(notes []string) string {
	return strings.Join(notes, "; ")
}

func (o *Orchestrator) logOutcome(out Outcome) {
	entry := o.logger.WithFields(logrus.Fields{
		"run":    o.runID,
		"task":   out.Task.ID,
		"title":  out.Task.Title,
		"status": string(out.Status),
	})
	if out.Err != nil {
		entry.WithError(out.Err).Warn("task attempt failed")
		return
	}
	entry.WithField("proof", out.ProofURL).Info("task completed")
}
