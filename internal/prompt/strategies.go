package prompt

import (
	"proofline/internal/task"
)

// Builtin returns a registry populated with one strategy per agent type.
func Builtin() *Registry {
	reg := NewRegistry()
	reg.MustRegister(contentStrategy{})
	reg.MustRegister(leadGenStrategy{})
	reg.MustRegister(researchStrategy{})
	reg.MustRegister(opsStrategy{})
	reg.MustRegister(financeStrategy{})
	return reg
}

type contentStrategy struct{}

func (contentStrategy) AgentType() task.AgentType { return task.AgentContent }

func (contentStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Draft the piece in clean Markdown suitable for direct publishing. " +
		"Open with the core idea, use headings where they help, and avoid placeholders."
}

type leadGenStrategy struct{}

func (leadGenStrategy) AgentType() task.AgentType { return task.AgentLeadGen }

func (leadGenStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Produce a prospect brief: who to reach, why now, and a concrete " +
		"outreach angle per prospect. One section per prospect, specifics over volume."
}

type researchStrategy struct{}

func (researchStrategy) AgentType() task.AgentType { return task.AgentResearch }

func (researchStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Write a research brief: findings first, then supporting evidence " +
		"with sources, then open questions. Flag anything uncertain instead of guessing."
}

type opsStrategy struct{}

func (opsStrategy) AgentType() task.AgentType { return task.AgentOps }

func (opsStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Produce a runbook: numbered steps, preconditions, and a rollback " +
		"note per step. Every step must be executable as written."
}

type financeStrategy struct{}

func (financeStrategy) AgentType() task.AgentType { return task.AgentFinance }

func (financeStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Summarize the figures with stated assumptions, a short table of " +
		"the numbers that matter, and the decision they support. No unstated estimates."
}

// generalStrategy backs tasks whose agent type is unknown to the registry.
type generalStrategy struct{}

func (generalStrategy) AgentType() task.AgentType { return "General" }

func (generalStrategy) Deliverable(t task.Task) string {
	return "DELIVERABLE: Draft the artifact in clean Markdown suitable for direct " +
		"publishing. Avoid placeholders, be specific, add headings where helpful."
}
