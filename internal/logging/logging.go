// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour.
type Config struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	Level string
	// Env "prod" switches to JSON output; anything else uses the console
	// encoder.
	Env string
	// Output is a zap sink path. Defaults to stderr so prompts on stdout
	// stay readable.
	Output string
}

// ParseLevel validates a level name.
func ParseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging: invalid level %q", level)
	}
	return lvl, nil
}

// Build constructs the logger described by cfg.
func Build(cfg Config) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		var err error
		if level, err = ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}

	var zcfg zap.Config
	if cfg.Env == "prod" {
		zcfg = zap.NewProductionConfig()
		zcfg.Encoding = "json"
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Level = zap.NewAtomicLevelAt(level)

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}

// Bootstrap returns a logger usable before flags are parsed. It never fails;
// a broken configuration degrades to a no-op logger.
func Bootstrap() *zap.Logger {
	logger, err := Build(Config{Level: "info"})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return zap.NewNop()
	}
	return logger
}
