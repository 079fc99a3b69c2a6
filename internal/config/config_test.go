package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("NOTION_TOKEN", "secret-token")
	t.Setenv("NOTION_AGENT_DB", "db-123")
}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NOTION_BASE_URL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"DRIVE_SA_JSON", "GDRIVE_PARENT_FOLDER_ID", "GOOGLE_WORKSPACE_IMPERSONATE",
		"PROOFLINE_VOICE_FILE", "PROOFLINE_SPOOL_DIR", "PROOFLINE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresQueueCredentials(t *testing.T) {
	clearOptional(t)
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("NOTION_AGENT_DB", "db-123")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "NOTION_TOKEN") {
		t.Fatalf("expected NOTION_TOKEN error, got %v", err)
	}

	t.Setenv("NOTION_TOKEN", "secret-token")
	t.Setenv("NOTION_AGENT_DB", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "NOTION_AGENT_DB") {
		t.Fatalf("expected NOTION_AGENT_DB error, got %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIModel != DefaultModel {
		t.Fatalf("model default = %q, want %q", cfg.OpenAIModel, DefaultModel)
	}
	if cfg.NotionBaseURL != "https://api.notion.com" {
		t.Fatalf("unexpected notion base URL: %q", cfg.NotionBaseURL)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("unexpected openai base URL: %q", cfg.OpenAIBaseURL)
	}
	if cfg.VoiceFile != "voice.yaml" || cfg.SpoolDir != ".proofline/artifacts" {
		t.Fatalf("unexpected file defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level default: %q", cfg.LogLevel)
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("NOTION_TOKEN", "  secret-token  ")
	t.Setenv("NOTION_BASE_URL", "https://example.test/notion/")
	t.Setenv("OPENAI_MODEL", " gpt-4o ")
	t.Setenv("PROOFLINE_LOG_LEVEL", "DEBUG")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NotionToken != "secret-token" {
		t.Fatalf("token not trimmed: %q", cfg.NotionToken)
	}
	if cfg.NotionBaseURL != "https://example.test/notion" {
		t.Fatalf("base URL not trimmed: %q", cfg.NotionBaseURL)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("model not trimmed: %q", cfg.OpenAIModel)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level not lowered: %q", cfg.LogLevel)
	}
}
