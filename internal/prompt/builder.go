package prompt

import (
	"strings"

	"proofline/internal/task"
)

// Builder composes the run preamble with a per-agent-type strategy into the
// final prompt. The preamble is fixed for the lifetime of the builder, so
// every task in a sweep is framed by the same voice.
type Builder struct {
	preamble Preamble
	registry *Registry
	fallback Strategy
}

// NewBuilder creates a builder over a strategy registry.
func NewBuilder(p Preamble, reg *Registry) *Builder {
	if reg == nil {
		reg = Builtin()
	}
	return &Builder{
		preamble: p,
		registry: reg,
		fallback: generalStrategy{},
	}
}

// Build assembles the prompt for a task. The result is a deterministic
// function of the task and the preamble.
func (b *Builder) Build(t task.Task) Spec {
	strategy, ok := b.registry.Resolve(t.AgentType)
	if !ok {
		strategy = b.fallback
	}

	var lines []string
	lines = append(lines, "JOB: "+orDefault(t.Title, "Untitled"))
	lines = append(lines, "AGENT TYPE: "+string(strategy.AgentType()))
	lines = append(lines, "PUBLISH MODE: "+orDefault(string(t.PublishMode), string(task.PublishNeedsReview)))
	if t.PromptContext != "" {
		lines = append(lines, "CONTEXT:", t.PromptContext)
	}
	if len(t.Inputs) > 0 {
		lines = append(lines, "INPUT LINKS:")
		for _, in := range t.Inputs {
			if in.URL != "" {
				lines = append(lines, "- "+in.URL)
			}
		}
	}
	lines = append(lines, "", strategy.Deliverable(t), "")

	return Spec{
		System: b.preamble.System(),
		User:   strings.Join(lines, "\n"),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
