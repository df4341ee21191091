package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FreeSnippetLimit != 2 {
		t.Errorf("FreeSnippetLimit = %d, want 2", cfg.FreeSnippetLimit)
	}
	if cfg.RecentLimit != DefaultRecentLimit {
		t.Errorf("RecentLimit = %d, want %d", cfg.RecentLimit, DefaultRecentLimit)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"recent_limit": 10, "disabled_tools": ["snippet_delete"]}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RecentLimit != 10 {
		t.Errorf("RecentLimit = %d, want 10", cfg.RecentLimit)
	}
	// Unset numeric field falls back to default
	if cfg.FreeSnippetLimit != 2 {
		t.Errorf("FreeSnippetLimit = %d, want 2", cfg.FreeSnippetLimit)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "snippet_delete" {
		t.Errorf("DisabledTools = %v, want [snippet_delete]", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatal("Load() error = nil for invalid JSON, want error")
	}
}
