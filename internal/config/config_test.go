package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Display.TopK != 3 {
		t.Errorf("Display.TopK = %d, want 3", cfg.Display.TopK)
	}
	if cfg.Oracle.Strategy != StrategyDOA {
		t.Errorf("Oracle.Strategy = %q, want %q", cfg.Oracle.Strategy, StrategyDOA)
	}
	if cfg.Oracle.Blame.HalfLifeDays != 90 {
		t.Errorf("Blame.HalfLifeDays = %d, want 90", cfg.Oracle.Blame.HalfLifeDays)
	}
	if len(cfg.Focus.IgnorePatterns) == 0 {
		t.Error("IgnorePatterns should not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_TopK(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TopK() != 3 {
		t.Errorf("TopK() = %d, want 3 in top mode", cfg.TopK())
	}

	cfg.Display.Mode = DisplayModeSingle
	if cfg.TopK() != 1 {
		t.Errorf("TopK() = %d, want 1 in single mode", cfg.TopK())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 99 }, "version"},
		{"bad mode", func(c *Config) { c.Display.Mode = "all" }, "display.mode"},
		{"zero topK", func(c *Config) { c.Display.TopK = 0 }, "display.topK"},
		{"bad style", func(c *Config) { c.Display.Style = "fancy" }, "display.style"},
		{"bad strategy", func(c *Config) { c.Oracle.Strategy = "random" }, "oracle.strategy"},
		{"negative timeout", func(c *Config) { c.Oracle.TimeoutMs = -1 }, "oracle.timeoutMs"},
		{"zero half-life", func(c *Config) { c.Oracle.Blame.HalfLifeDays = 0 }, "oracle.blame.halfLifeDays"},
		{"bad source", func(c *Config) { c.Focus.Source = "editor" }, "focus.source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "display.topK", Message: "must be at least 1"}
	want := "config error in field 'display.topK': must be at least 1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Display.TopK != 3 {
		t.Errorf("Display.TopK = %d, want 3", cfg.Display.TopK)
	}
	if cfg.RepoRoot != tmpDir {
		t.Errorf("RepoRoot = %q, want %q", cfg.RepoRoot, tmpDir)
	}
	if len(cfg.Oracle.Blame.BotPatterns) != 4 {
		t.Errorf("BotPatterns = %v, want 4 defaults", cfg.Oracle.Blame.BotPatterns)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `{
  "version": 1,
  "display": {"mode": "single", "prefix": "owner: "},
  "oracle": {"strategy": "blame", "timeoutMs": 250}
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Display.Mode != DisplayModeSingle {
		t.Errorf("Display.Mode = %q, want single", cfg.Display.Mode)
	}
	if cfg.Display.Prefix != "owner: " {
		t.Errorf("Display.Prefix = %q", cfg.Display.Prefix)
	}
	if cfg.Oracle.Strategy != StrategyBlame {
		t.Errorf("Oracle.Strategy = %q, want blame", cfg.Oracle.Strategy)
	}
	if cfg.Oracle.TimeoutMs != 250 {
		t.Errorf("Oracle.TimeoutMs = %d, want 250", cfg.Oracle.TimeoutMs)
	}
	// Untouched keys keep their defaults
	if cfg.Display.TopK != 3 {
		t.Errorf("Display.TopK = %d, want default 3", cfg.Display.TopK)
	}
	if cfg.Focus.Source != FocusSourceStdin {
		t.Errorf("Focus.Source = %q, want default stdin", cfg.Focus.Source)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("EXPERTFINDER_DISPLAY_TOPK", "5")
	t.Setenv("EXPERTFINDER_ORACLE_STRATEGY", "blame")

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Display.TopK != 5 {
		t.Errorf("Display.TopK = %d, want 5 from env", cfg.Display.TopK)
	}
	if cfg.Oracle.Strategy != StrategyBlame {
		t.Errorf("Oracle.Strategy = %q, want blame from env", cfg.Oracle.Strategy)
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Display.TopK = 7
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, ConfigDir, "config.json")); err != nil {
		t.Fatalf("config.json not written: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Display.TopK != 7 {
		t.Errorf("Display.TopK = %d, want 7", loaded.Display.TopK)
	}
}
