// internal/config/config.go
//
// This package resolves the run configuration from the environment. The
// configuration is read exactly once at startup and passed to every component
// constructor; nothing else in the program reads ambient environment state.
package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultModel is the cost-effective model used when OPENAI_MODEL is unset.
	DefaultModel = "gpt-4o-mini"

	defaultNotionBaseURL = "https://api.notion.com"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultVoiceFile     = "voice.yaml"
	defaultSpoolDir      = ".proofline/artifacts"
	defaultLogLevel      = "info"
)

// Config holds the immutable runtime configuration for one sweep.
type Config struct {
	// Queue (Notion) access.
	NotionToken      string
	NotionDatabaseID string
	NotionBaseURL    string

	// Model provider. An empty API key selects the offline fallback invoker.
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Document store. Empty credentials select the local spool store.
	GoogleCredentialsJSON string
	DriveParentFolderID   string
	Impersonate           string

	// VoiceFile points at the YAML alignment preamble, loaded once per run.
	VoiceFile string

	// SpoolDir is where the local artifact store writes proof documents.
	SpoolDir string

	LogLevel string
}

// Load reads the environment into a validated Config. A missing required
// value is fatal: the run must not touch any task with a broken setup.
func Load() (Config, error) {
	cfg := Config{
		NotionToken:           os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:      os.Getenv("NOTION_AGENT_DB"),
		NotionBaseURL:         os.Getenv("NOTION_BASE_URL"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:         os.Getenv("OPENAI_BASE_URL"),
		GoogleCredentialsJSON: os.Getenv("DRIVE_SA_JSON"),
		DriveParentFolderID:   os.Getenv("GDRIVE_PARENT_FOLDER_ID"),
		Impersonate:           os.Getenv("GOOGLE_WORKSPACE_IMPERSONATE"),
		VoiceFile:             os.Getenv("PROOFLINE_VOICE_FILE"),
		SpoolDir:              os.Getenv("PROOFLINE_SPOOL_DIR"),
		LogLevel:              os.Getenv("PROOFLINE_LOG_LEVEL"),
	}
	cfg.applyDefaults()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NotionBaseURL == "" {
		c.NotionBaseURL = defaultNotionBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultModel
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if c.VoiceFile == "" {
		c.VoiceFile = defaultVoiceFile
	}
	if c.SpoolDir == "" {
		c.SpoolDir = defaultSpoolDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func (c *Config) normalize() {
	c.NotionToken = strings.TrimSpace(c.NotionToken)
	c.NotionDatabaseID = strings.TrimSpace(c.NotionDatabaseID)
	c.NotionBaseURL = strings.TrimRight(strings.TrimSpace(c.NotionBaseURL), "/")
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.OpenAIModel = strings.TrimSpace(c.OpenAIModel)
	c.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAIBaseURL), "/")
	c.DriveParentFolderID = strings.TrimSpace(c.DriveParentFolderID)
	c.Impersonate = strings.TrimSpace(c.Impersonate)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c Config) validate() error {
	if c.NotionToken == "" {
		return fmt.Errorf("config: NOTION_TOKEN is required")
	}
	if c.NotionDatabaseID == "" {
		return fmt.Errorf("config: NOTION_AGENT_DB is required")
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("config: model name must not be blank")
	}
	return nil
}
