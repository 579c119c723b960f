package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("MOVIE_TICKETS_DATA_DIR", "")
	t.Setenv("MOVIE_TICKETS_LOG_FILE", "")
	t.Setenv("MOVIE_TICKETS_MAX_SEAT_ATTEMPTS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")

	base, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("expected user config dir, got %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if want := filepath.Join(base, appName); cfg.DataDir != want {
		t.Fatalf("expected data dir %q, got %q", want, cfg.DataDir)
	}
	if want := filepath.Join(base, appName, appName+".log"); cfg.LogFile != want {
		t.Fatalf("expected log file %q, got %q", want, cfg.LogFile)
	}
	if cfg.MaxSeatAttempts != 0 {
		t.Fatalf("expected unbounded seat attempts, got %d", cfg.MaxSeatAttempts)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected development env, got %q", cfg.Env)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("MOVIE_TICKETS_DATA_DIR", filepath.Join(root, "data"))
	t.Setenv("MOVIE_TICKETS_LOG_FILE", filepath.Join(root, "app.log"))
	t.Setenv("MOVIE_TICKETS_MAX_SEAT_ATTEMPTS", "7")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.DataDir != filepath.Join(root, "data") {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.LogFile != filepath.Join(root, "app.log") {
		t.Fatalf("unexpected log file %q", cfg.LogFile)
	}
	if cfg.MaxSeatAttempts != 7 {
		t.Fatalf("expected 7 seat attempts, got %d", cfg.MaxSeatAttempts)
	}
	if cfg.LogLevel != "debug" || cfg.Env != "production" {
		t.Fatalf("unexpected logging config %+v", cfg)
	}
}

func TestLoad_InvalidAttemptsFallsBack(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("MOVIE_TICKETS_DATA_DIR", root)
	t.Setenv("MOVIE_TICKETS_MAX_SEAT_ATTEMPTS", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.MaxSeatAttempts != 0 {
		t.Fatalf("expected fallback to 0, got %d", cfg.MaxSeatAttempts)
	}

	t.Setenv("MOVIE_TICKETS_MAX_SEAT_ATTEMPTS", "-4")
	cfg, _ = Load()
	if cfg.MaxSeatAttempts != 0 {
		t.Fatalf("expected negative attempts clamped to 0, got %d", cfg.MaxSeatAttempts)
	}
}

func TestWithDataDir_MovesDefaultLogFile(t *testing.T) {
	cfg := &Config{DataDir: "/a", LogFile: filepath.Join("/a", appName+".log")}
	next := cfg.WithDataDir("/b")
	if next.LogFile != filepath.Join("/b", appName+".log") {
		t.Fatalf("expected log file to move, got %q", next.LogFile)
	}

	custom := &Config{DataDir: "/a", LogFile: "/var/log/x.log"}
	if got := custom.WithDataDir("/b").LogFile; got != "/var/log/x.log" {
		t.Fatalf("expected custom log file kept, got %q", got)
	}
}
