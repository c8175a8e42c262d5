// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type (
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	Sampling struct {
		// Interval is the sampling interval in seconds
		Interval float64 `yaml:"interval"`

		// Logical divides power by logical threads instead of physical cores
		Logical bool `yaml:"logical"`

		// Fake replaces the RAPL counters with a synthetic source
		Fake bool `yaml:"fake"`
	}

	Display struct {
		JSON       bool    `yaml:"json"`
		Fullscreen bool    `yaml:"fullscreen"`
		MaxLines   int     `yaml:"maxLines"`
		NoRoll     bool    `yaml:"noRoll"`
		CostPerKWh float64 `yaml:"costPerKWh"`
	}

	Config struct {
		Log      Log      `yaml:"log"`
		Sampling Sampling `yaml:"sampling"`
		Display  Display  `yaml:"display"`
	}
)

// Mode is the render mode, fixed for the process run
type Mode int

const (
	ModeTable Mode = iota
	ModeFullscreen
	ModeJSON
)

const (
	// Flags
	LogLevelFlag   = "log.level"
	LogFormatFlag  = "log.format"
	IntervalArg    = "interval"
	LogicalFlag    = "logical"
	JSONFlag       = "json"
	FullscreenFlag = "fullscreen"
	MaxLinesFlag   = "max-lines"
	NoRollFlag     = "no-roll"
	CostFlag       = "cost"
	FakeFlag       = "fake"
)

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Sampling: Sampling{
			Interval: 1.0,
		},
		Display: Display{
			MaxLines:   20,
			CostPerKWh: 1.5,
		},
	}
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromFile loads configuration from a file
func FromFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

type ConfigUpdaterFn func(*Config) error

// RegisterFlags registers command-line flags and the positional interval
// with the kingpin app, and returns a ConfigUpdaterFn that applies the
// parsed values: explicitly set flags override config file settings.
func RegisterFlags(app *kingpin.Application) ConfigUpdaterFn {
	// track flags and args that were explicitly set
	flagsSet := map[string]bool{}

	app.PreAction(func(ctx *kingpin.ParseContext) error {
		flagsSet = map[string]bool{}

		for _, element := range ctx.Elements {
			switch clause := element.Clause.(type) {
			case *kingpin.FlagClause:
				if element.Value != nil {
					flagsSet[clause.Model().Name] = true
				}
			case *kingpin.ArgClause:
				if element.Value != nil {
					flagsSet[clause.Model().Name] = true
				}
			}
		}
		return nil
	})

	interval := app.Arg(IntervalArg, "Sampling interval in seconds").Default("1.0").Float64()

	logical := app.Flag(LogicalFlag, "Divide power by logical threads instead of physical cores").Short('l').Bool()
	jsonMode := app.Flag(JSONFlag, "Output each sample as one JSON object per line (disables table modes)").Short('j').Bool()
	fullscreen := app.Flag(FullscreenFlag, "Rewrite rows in place (no vertical growth)").Short('f').Bool()
	maxLines := app.Flag(MaxLinesFlag, "Keep at most N data rows, then clear screen and redraw (table mode only)").Short('m').Default("20").Int()
	noRoll := app.Flag(NoRollFlag, "Scroll indefinitely without reprinting the header").Short('N').Bool()
	cost := app.Flag(CostFlag, "Electricity cost per kWh").Short('c').Default("1.5").Float64()
	fake := app.Flag(FakeFlag, "Use synthetic counters instead of RAPL (for demos and machines without powercap)").Bool()

	logLevel := app.Flag(LogLevelFlag, "Logging level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	logFormat := app.Flag(LogFormatFlag, "Logging format: text or json").Default("text").Enum("text", "json")

	return func(cfg *Config) error {
		if flagsSet[IntervalArg] {
			cfg.Sampling.Interval = *interval
		}
		if flagsSet[LogicalFlag] {
			cfg.Sampling.Logical = *logical
		}
		if flagsSet[FakeFlag] {
			cfg.Sampling.Fake = *fake
		}

		if flagsSet[JSONFlag] {
			cfg.Display.JSON = *jsonMode
		}
		if flagsSet[FullscreenFlag] {
			cfg.Display.Fullscreen = *fullscreen
		}
		if flagsSet[MaxLinesFlag] {
			cfg.Display.MaxLines = *maxLines
		}
		if flagsSet[NoRollFlag] {
			cfg.Display.NoRoll = *noRoll
		}
		if flagsSet[CostFlag] {
			cfg.Display.CostPerKWh = *cost
		}

		if flagsSet[LogLevelFlag] {
			cfg.Log.Level = *logLevel
		}
		if flagsSet[LogFormatFlag] {
			cfg.Log.Format = *logFormat
		}

		// an explicit row bound makes no sense for a headerless stream
		if cfg.Display.JSON && flagsSet[MaxLinesFlag] {
			return fmt.Errorf("invalid configuration: --%s cannot be combined with --%s", MaxLinesFlag, JSONFlag)
		}

		cfg.sanitize()
		return cfg.Validate()
	}
}

// Mode returns the selected render mode
func (c *Config) Mode() Mode {
	switch {
	case c.Display.JSON:
		return ModeJSON
	case c.Display.Fullscreen:
		return ModeFullscreen
	default:
		return ModeTable
	}
}

func (c *Config) sanitize() {
	c.Log.Level = strings.TrimSpace(c.Log.Level)
	c.Log.Format = strings.TrimSpace(c.Log.Format)
}

// Validate checks for configuration errors
func (c *Config) Validate() error {
	var errs []string

	{ // logging
		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLogLevels[c.Log.Level] {
			errs = append(errs, fmt.Sprintf("invalid log level: %s", c.Log.Level))
		}

		if c.Log.Format != "text" && c.Log.Format != "json" {
			errs = append(errs, fmt.Sprintf("invalid log format: %s", c.Log.Format))
		}
	}

	{ // sampling
		if c.Sampling.Interval <= 0 {
			errs = append(errs, fmt.Sprintf("sampling interval must be positive, got %v", c.Sampling.Interval))
		}
	}

	{ // display modes: JSON is mutually exclusive with the table modes
		if c.Display.JSON && c.Display.Fullscreen {
			errs = append(errs, "json mode cannot be combined with fullscreen mode")
		}
		if c.Display.JSON && c.Display.NoRoll {
			errs = append(errs, "json mode cannot be combined with no-roll")
		}
		if c.Display.MaxLines <= 0 {
			errs = append(errs, fmt.Sprintf("max-lines must be positive, got %d", c.Display.MaxLines))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}
