package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
admin:
  password: from-file
  session_ttl: 30m
questions:
  source: xlsx
results:
  sink: xlsx
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QCM_ADMIN_PASSWORD", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Admin.Password != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.Admin.Password)
	}
	if cfg.Results.Path != "QCM_Algo_Resultats.xlsx" || cfg.Questions.Path != cfg.Results.Path {
		t.Fatalf("expected shared workbook path, got %q / %q", cfg.Results.Path, cfg.Questions.Path)
	}
	if got := TTLDuration(cfg.Admin.SessionTTL, time.Hour); got != 30*time.Minute {
		t.Fatalf("unexpected session ttl %v", got)
	}
}

func TestValidateRejectsMissingBackends(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	cfg := Default()
	cfg.Results.Sink = BackendPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres url error")
	}

	cfg = Default()
	cfg.Questions.Source = "gsheet"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown source error")
	}

	cfg = Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("", 2*time.Minute); got != 2*time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
}
