package config

import (
	"os"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	cfg, err := New()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DatabasePath != "data/kazoeru.db" {
		t.Fatalf("unexpected db path: %q", cfg.DatabasePath)
	}
	if cfg.PraiseFilePath != "praise.json" {
		t.Fatalf("unexpected praise path: %q", cfg.PraiseFilePath)
	}
	if cfg.ReportSchedule != "0 21 * * *" {
		t.Fatalf("unexpected schedule: %q", cfg.ReportSchedule)
	}
	if cfg.AdminUserID != 0 || cfg.TelegramDebug {
		t.Fatalf("unexpected optional values: %+v", cfg)
	}
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ADMIN_USER", "42")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := New()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AdminUserID != 42 || cfg.DatabasePath != ":memory:" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestNew_MissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_ = os.Unsetenv("TELEGRAM_BOT_TOKEN")
	if _, err := New(); err == nil {
		t.Fatalf("expected error for missing token")
	}
}
