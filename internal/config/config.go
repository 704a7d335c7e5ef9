// Package config resolves formflow-cli settings from flags, FORMFLOW_*
// environment variables and an optional config file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// EnvPrefix prefixes every environment variable, e.g. FORMFLOW_SUGGEST_URL.
const EnvPrefix = "FORMFLOW"

// Config is the resolved CLI configuration.
type Config struct {
	Form           string        `mapstructure:"form" validate:"required"`
	SchemaDir      string        `mapstructure:"schema_dir"`
	List           bool          `mapstructure:"list"`
	SuggestURL     string        `mapstructure:"suggest_url" validate:"omitempty,url"`
	SuggestTimeout time.Duration `mapstructure:"suggest_timeout" validate:"gte=0s"`
	Offline        bool          `mapstructure:"offline"`
	SubmitDelay    time.Duration `mapstructure:"submit_delay" validate:"gte=0s"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Env            string        `mapstructure:"env" validate:"oneof=dev prod"`
	LogFile        string        `mapstructure:"log_file"`
}

type setting struct {
	flag  string
	value any
	usage string
}

// key maps a flag name to its config key: suggest-url -> suggest_url.
func (s setting) key() string {
	return strings.ReplaceAll(s.flag, "-", "_")
}

var settings = []setting{
	{"form", schema.FormSignup, "form to fill in"},
	{"schema-dir", "", "directory of YAML form definitions (bundled forms if empty)"},
	{"list", false, "list available forms and exit"},
	{"suggest-url", "", "endpoint of the email domain suggestion service"},
	{"suggest-timeout", 5 * time.Second, "bound for each suggestion lookup (0 disables)"},
	{"offline", false, "guess domains from the company name instead of calling the service"},
	{"submit-delay", submit.DefaultDelay, "simulated submission latency"},
	{"log-level", "warn", "log level: debug, info, warn, error"},
	{"env", "dev", `logging flavour: "dev" or "prod"`},
	{"log-file", "", "write logs to this file instead of stderr"},
}

// NewFlagSet registers every setting plus --config on a fresh flag set.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, json or toml)")
	for _, s := range settings {
		switch v := s.value.(type) {
		case string:
			fs.String(s.flag, v, s.usage)
		case bool:
			fs.Bool(s.flag, v, s.usage)
		case time.Duration:
			fs.Duration(s.flag, v, s.usage)
		}
	}
	return fs
}

// Load parses args and merges the sources into one Config.
// Precedence (highest wins): explicit flags > env > config file > defaults.
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, s := range settings {
		v.SetDefault(s.key(), s.value)
		_ = v.BindEnv(s.key())
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	for _, s := range settings {
		if f := fs.Lookup(s.flag); f != nil && f.Changed {
			if err := v.BindPFlag(s.key(), f); err != nil {
				return Config{}, fmt.Errorf("config: bind %s: %w", s.flag, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := playground.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
