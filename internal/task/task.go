// Package task defines the unit of work pulled from the queue and the
// vocabulary shared by the source, orchestrator, and report layers.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Status enumerates the lifecycle states a task moves through. Transitions
// only run forward: Queued -> Running -> one of the terminal states.
type Status string

const (
	StatusQueued      Status = "Queued"
	StatusRunning     Status = "Running"
	StatusNeedsReview Status = "Needs Review"
	StatusDone        Status = "Done"
	StatusBlocked     Status = "Blocked"
)

// Terminal reports whether the status ends a task's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusNeedsReview, StatusBlocked:
		return true
	default:
		return false
	}
}

// ParseStatus maps a queue status label onto a known Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.TrimSpace(raw)) {
	case StatusQueued:
		return StatusQueued, nil
	case StatusRunning:
		return StatusRunning, nil
	case StatusNeedsReview:
		return StatusNeedsReview, nil
	case StatusDone:
		return StatusDone, nil
	case StatusBlocked:
		return StatusBlocked, nil
	default:
		return "", fmt.Errorf("task: unknown status %q", raw)
	}
}

// AgentType selects which prompt strategy drafts the deliverable.
type AgentType string

const (
	AgentContent  AgentType = "Content"
	AgentLeadGen  AgentType = "LeadGen"
	AgentResearch AgentType = "Research"
	AgentOps      AgentType = "Ops"
	AgentFinance  AgentType = "Finance"
)

// PublishMode declares whether a gated result may ship without review.
type PublishMode string

const (
	PublishAuto        PublishMode = "Auto"
	PublishNeedsReview PublishMode = "Needs Review"
)

// InputRef points at a read-only attachment or link supplied with the task.
type InputRef struct {
	URL string
}

// Task is one queued unit of work.
type Task struct {
	ID            string
	Title         string
	AgentType     AgentType
	PromptContext string
	Inputs        []InputRef
	PublishMode   PublishMode
	// ConfidenceGate is nil when the queue record carries no threshold.
	ConfidenceGate *float64
	Status         Status
	Due            time.Time
	ProofURL       string
	Confidence     *float64
	ProofNote      string
	Ally           []string
	// BudgetTokens is carried through from the queue schema but not used
	// by any processing logic.
	BudgetTokens int
}

// Eligible reports whether the task may be picked up by a sweep: it must
// still be Queued and due on or before the given day.
func (t Task) Eligible(today time.Time) bool {
	if t.Status != StatusQueued {
		return false
	}
	if t.Due.IsZero() {
		return false
	}
	y, m, d := today.Date()
	dayEnd := time.Date(y, m, d, 23, 59, 59, 0, today.Location())
	return !t.Due.After(dayEnd)
}

// Gate returns the confidence threshold to apply at the gating step. A task
// without a configured gate never auto-publishes, so the default is 1.0.
func (t Task) Gate() float64 {
	if t.ConfidenceGate == nil {
		return 1.0
	}
	return *t.ConfidenceGate
}

// Result is the terminal record written back to the queue exactly once per
// processing attempt.
type Result struct {
	Status     Status
	ProofURL   *string
	Confidence *float64
	Note       string
}
