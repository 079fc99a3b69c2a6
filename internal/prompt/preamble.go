// Package prompt assembles model prompts: a voice/alignment preamble shared
// by every invocation of a run, plus a per-agent-type strategy that frames
// the deliverable.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preamble is the alignment/voice configuration loaded once per run and
// applied identically to every model invocation.
type Preamble struct {
	Identity   string   `yaml:"identity"`
	Context    string   `yaml:"context"`
	Mission    string   `yaml:"mission"`
	Voice      string   `yaml:"voice"`
	Persona    string   `yaml:"persona"`
	Attitude   string   `yaml:"attitude"`
	CoreTraits []string `yaml:"core_traits"`
	Focus      []string `yaml:"focus"`
	Motivation string   `yaml:"motivation"`
	Forbidden  []string `yaml:"forbidden"`
	Tagline    string   `yaml:"tagline"`
}

// DefaultPreamble is the built-in stand-in used when no voice file is
// available. Keeping it non-empty means every prompt still carries a voice.
func DefaultPreamble() Preamble {
	return Preamble{
		Identity: "Agent Writer",
		Mission:  "Deliver signal, not noise.",
	}
}

// LoadPreamble reads the voice configuration from a YAML file. Callers are
// expected to fall back to DefaultPreamble when this fails; a missing voice
// file degrades the run, it does not abort it.
func LoadPreamble(path string) (Preamble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preamble{}, fmt.Errorf("prompt: read voice file: %w", err)
	}
	var p Preamble
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preamble{}, fmt.Errorf("prompt: parse voice file %s: %w", path, err)
	}
	return p, nil
}

// System renders the preamble into the system-message block sent with every
// invocation. The rendering is deterministic: same preamble, same text.
func (p Preamble) System() string {
	var lines []string
	if p.Identity != "" {
		lines = append(lines, "IDENTITY: "+p.Identity)
	}
	if p.Context != "" {
		lines = append(lines, "CONTEXT: "+p.Context)
	}
	if p.Mission != "" {
		lines = append(lines, "", "MISSION: "+p.Mission)
	}
	if p.Voice != "" {
		lines = append(lines, "", "VOICE: "+p.Voice)
	}
	if p.Persona != "" {
		lines = append(lines, "PERSONA: "+p.Persona)
	}
	if p.Attitude != "" {
		lines = append(lines, "ATTITUDE: "+p.Attitude)
	}
	if len(p.CoreTraits) > 0 {
		lines = append(lines, "", "CORE TRAITS: "+strings.Join(p.CoreTraits, ", "))
	}
	if len(p.Focus) > 0 {
		lines = append(lines, "", "FOCUS: "+strings.Join(p.Focus, ", "))
	}
	if p.Motivation != "" {
		lines = append(lines, "", "MOTIVATION: "+p.Motivation)
	}
	if len(p.Forbidden) > 0 {
		lines = append(lines, "", "FORBIDDEN: "+strings.Join(p.Forbidden, ", "))
	}
	if p.Tagline != "" {
		lines = append(lines, "", p.Tagline)
	}
	return strings.Join(lines, "\n")
}
