package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quizdrill.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB.Path != "quizdrill.db" {
		t.Errorf("Expected default db path, but got %q", cfg.DB.Path)
	}
	if cfg.Web.Listen != ":8484" {
		t.Errorf("Expected default listen address, but got %q", cfg.Web.Listen)
	}
	if cfg.Scheduler.MatureIntervalDays != 21 {
		t.Errorf("Expected default maturity threshold 21, but got %d", cfg.Scheduler.MatureIntervalDays)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
bank:
  path: /srv/quizdrill/questions.json
web:
  listen: ":9000"
scheduler:
  mature_interval_days: 30
  easy_interval_bonus: 1.5
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.Bank.Path != "/srv/quizdrill/questions.json" {
		t.Errorf("Expected bank path from file, but got %q", cfg.Bank.Path)
	}
	if cfg.Web.Listen != ":9000" {
		t.Errorf("Expected listen from file, but got %q", cfg.Web.Listen)
	}
	if cfg.Scheduler.MatureIntervalDays != 30 {
		t.Errorf("Expected maturity threshold 30, but got %d", cfg.Scheduler.MatureIntervalDays)
	}
	if cfg.Scheduler.EasyIntervalBonus != 1.5 {
		t.Errorf("Expected easy bonus 1.5, but got %.2f", cfg.Scheduler.EasyIntervalBonus)
	}
	// Untouched scheduler knobs keep their defaults.
	if cfg.Scheduler.MinEase != 1.3 {
		t.Errorf("Expected ease floor default 1.3, but got %.2f", cfg.Scheduler.MinEase)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "db:\n  path: from-file.db\n")
	t.Setenv("QUIZDRILL_DB_PATH", "from-env.db")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB.Path != "from-env.db" {
		t.Errorf("Expected env to win over file, but got %q", cfg.DB.Path)
	}
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	t.Setenv("QUIZDRILL_DB_PATH", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("bank", "", "")
	if err := flags.Parse([]string{"--db", "from-flag.db"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB.Path != "from-flag.db" {
		t.Errorf("Expected flag to win, but got %q", cfg.DB.Path)
	}
	// The unset --bank flag must not clobber the default with "".
	if cfg.Bank.Path != "data/questions.json" {
		t.Errorf("Expected default bank path, but got %q", cfg.Bank.Path)
	}
}

func TestLoadRejectsBrokenSchedulerTable(t *testing.T) {
	path := writeConfigFile(t, "scheduler:\n  min_ease: -1\n")
	if _, err := Load(path, nil); err == nil {
		t.Error("Expected an error for a broken scheduler table, but got none")
	}
}
