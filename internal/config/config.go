package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/quizdrill/quizdrill/internal/srs"
)

const envPrefix = "QUIZDRILL_"

// Config is the full application configuration. Sources are layered in
// increasing precedence: defaults, yaml file, environment, flags.
type Config struct {
	Bank struct {
		Path    string `koanf:"path" validate:"required"`
		Repo    string `koanf:"repo"`
		RepoDir string `koanf:"repo_dir"`
	} `koanf:"bank"`
	DB struct {
		Path string `koanf:"path" validate:"required"`
	} `koanf:"db"`
	Web struct {
		Listen string `koanf:"listen" validate:"required"`
	} `koanf:"web"`
	// Scheduler is the single table of tuning constants for the
	// spaced-repetition core.
	Scheduler srs.Policy `koanf:"scheduler"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Bank.Path = "data/questions.json"
	cfg.Bank.RepoDir = "repos/bank"
	cfg.DB.Path = "quizdrill.db"
	cfg.Web.Listen = ":8484"
	cfg.Scheduler = srs.DefaultPolicy()
	return cfg
}

// Load builds the configuration from the optional yaml file at path, the
// QUIZDRILL_* environment, and the given flag set (highest precedence).
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// QUIZDRILL_DB_PATH → db.path. Nested scheduler keys contain
	// underscores themselves, so only the first underscore splits.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagToKey), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// flagToKey maps the short CLI flag names onto config keys. Flags that were
// not set on the command line are skipped so they cannot mask file or env
// values with empty strings.
func flagToKey(f *pflag.Flag) (string, interface{}) {
	if !f.Changed {
		return "", nil
	}
	switch f.Name {
	case "bank":
		return "bank.path", f.Value.String()
	case "bank-repo":
		return "bank.repo", f.Value.String()
	case "db":
		return "db.path", f.Value.String()
	case "listen":
		return "web.listen", f.Value.String()
	}
	return "", nil
}
