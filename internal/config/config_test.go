package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lindqvist/pokerd/internal/logging"
)

func run(t *testing.T, args ...string) *Config {
	t.Helper()

	cfg := &Config{}

	var resolved *Config

	cmd := NewCommand(cfg, func(_ *cobra.Command, c *Config) error {
		resolved = c

		return nil
	})

	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	return resolved
}

func TestDefaults(t *testing.T) {
	cfg := run(t)

	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("Addr = %q, want 127.0.0.1:8080", cfg.Addr)
	}

	if cfg.Limit != 15 {
		t.Fatalf("Limit = %d, want 15", cfg.Limit)
	}

	if cfg.Log != logging.LevelInfo {
		t.Fatalf("Log = %v, want info", cfg.Log)
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg := run(t, "localhost:9090", "--limit", "3", "--log", "debug")

	if cfg.Addr != "localhost:9090" {
		t.Fatalf("Addr = %q, want localhost:9090", cfg.Addr)
	}

	if cfg.Limit != 3 {
		t.Fatalf("Limit = %d, want 3", cfg.Limit)
	}

	if cfg.Log != logging.LevelDebug {
		t.Fatalf("Log = %v, want debug", cfg.Log)
	}
}

func TestEnvOverridesDefaultButNotFlag(t *testing.T) {
	t.Setenv("POKERD_LIMIT", "7")

	cfg := run(t)
	if cfg.Limit != 7 {
		t.Fatalf("Limit = %d, want 7 from env", cfg.Limit)
	}

	cfg = run(t, "--limit", "9")
	if cfg.Limit != 9 {
		t.Fatalf("Limit = %d, want 9 (flag beats env)", cfg.Limit)
	}
}

func TestConfigFileLayeredBeneathEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pokerd.yaml")

	yamlContent := "addr: file-addr:1234\nlimit: 5\nlog: warn\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := run(t, "--config", path)

	if cfg.Addr != "file-addr:1234" {
		t.Fatalf("Addr = %q, want file-addr:1234", cfg.Addr)
	}

	if cfg.Limit != 5 {
		t.Fatalf("Limit = %d, want 5", cfg.Limit)
	}

	if cfg.Log != logging.LevelWarn {
		t.Fatalf("Log = %v, want warn", cfg.Log)
	}

	cfg = run(t, "--config", path, "--limit", "20")
	if cfg.Limit != 20 {
		t.Fatalf("Limit = %d, want 20 (flag beats file)", cfg.Limit)
	}

	t.Setenv("POKERD_LIMIT", "11")

	cfg = run(t, "--config", path)
	if cfg.Limit != 11 {
		t.Fatalf("Limit = %d, want 11 (env beats file)", cfg.Limit)
	}
}

func TestInvalidLimitRejected(t *testing.T) {
	cfg := &Config{}
	cmd := NewCommand(cfg, func(*cobra.Command, *Config) error { return nil })
	cmd.SetArgs([]string{"--limit", "0"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() error = nil, want validation error for non-positive limit")
	}
}
