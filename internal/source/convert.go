package source

import (
	"fmt"
	"strings"
	"time"

	"proofline/internal/task"
)

// page mirrors the queue record shape. All recognized property kinds are
// optional; absent fields simply stay nil.
type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Title    []richText    `json:"title"`
	RichText []richText    `json:"rich_text"`
	Select   *selectValue  `json:"select"`
	Number   *float64      `json:"number"`
	Date     *dateValue    `json:"date"`
	URL      *string       `json:"url"`
	Files    []fileValue   `json:"files"`
	People   []personValue `json:"people"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type fileValue struct {
	External *urlValue `json:"external"`
	File     *urlValue `json:"file"`
}

type urlValue struct {
	URL string `json:"url"`
}

type personValue struct {
	ID string `json:"id"`
}

// toTask extracts the typed fields from a queue record.
func (p page) toTask() (task.Task, error) {
	if p.ID == "" {
		return task.Task{}, fmt.Errorf("source: record without id")
	}

	status, err := task.ParseStatus(p.selectOf("Status"))
	if err != nil {
		return task.Task{}, err
	}

	due, err := p.dueDate()
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:             p.ID,
		Title:          p.titleOf("Name"),
		AgentType:      task.AgentType(p.selectOf("AgentType")),
		PromptContext:  p.richTextOf("Prompt / Context"),
		Inputs:         p.inputsOf("Inputs"),
		PublishMode:    task.PublishMode(p.selectOf("PublishMode")),
		ConfidenceGate: p.numberOf("ConfidenceGate"),
		Status:         status,
		Due:            due,
		ProofNote:      p.richTextOf("ProofNote"),
		Ally:           p.peopleOf("Ally"),
	}
	if t.Title == "" {
		t.Title = "Untitled"
	}
	if t.PublishMode == "" {
		t.PublishMode = task.PublishNeedsReview
	}
	if url := p.urlOf("ProofURL"); url != "" {
		t.ProofURL = url
	}
	t.Confidence = p.numberOf("Confidence")
	if budget := p.numberOf("BudgetTokens"); budget != nil {
		t.BudgetTokens = int(*budget)
	}
	if t.ConfidenceGate != nil && (*t.ConfidenceGate < 0 || *t.ConfidenceGate > 1) {
		return task.Task{}, fmt.Errorf("source: confidence gate %v outside [0,1]", *t.ConfidenceGate)
	}
	return t, nil
}

func (p page) dueDate() (time.Time, error) {
	prop, ok := p.Properties["Due"]
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return time.Time{}, fmt.Errorf("source: record missing due date")
	}
	start := prop.Date.Start
	if len(start) > 10 {
		start = start[:10]
	}
	due, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, fmt.Errorf("source: parse due date %q: %w", prop.Date.Start, err)
	}
	return due, nil
}

func (p page) titleOf(name string) string {
	prop, ok := p.Properties[name]
	if !ok || len(prop.Title) == 0 {
		return ""
	}
	return strings.TrimSpace(prop.Title[0].PlainText)
}

func (p page) richTextOf(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(prop.RichText))
	for _, rt := range prop.RichText {
		parts = append(parts, rt.PlainText)
	}
	return strings.Join(parts, "\n")
}

func (p page) selectOf(name string) string {
	prop, ok := p.Properties[name]
	if !ok || prop.Select == nil {
		return ""
	}
	return prop.Select.Name
}

func (p page) numberOf(name string) *float64 {
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	return prop.Number
}

func (p page) urlOf(name string) string {
	prop, ok := p.Properties[name]
	if !ok || prop.URL == nil {
		return ""
	}
	return *prop.URL
}

func (p page) inputsOf(name string) []task.InputRef {
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	var refs []task.InputRef
	for _, f := range prop.Files {
		switch {
		case f.External != nil && f.External.URL != "":
			refs = append(refs, task.InputRef{URL: f.External.URL})
		case f.File != nil && f.File.URL != "":
			refs = append(refs, task.InputRef{URL: f.File.URL})
		}
	}
	return refs
}

func (p page) peopleOf(name string) []string {
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	var ids []string
	for _, person := range prop.People {
		if person.ID != "" {
			ids = append(ids, person.ID)
		}
	}
	return ids
}
