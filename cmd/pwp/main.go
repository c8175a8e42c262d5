// SPDX-FileCopyrightText: 2026 The pwp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/pwplabs/pwp/internal/config"
	"github.com/pwplabs/pwp/internal/device"
	"github.com/pwplabs/pwp/internal/display"
	"github.com/pwplabs/pwp/internal/logger"
	"github.com/pwplabs/pwp/internal/monitor"
	"github.com/pwplabs/pwp/internal/service"
	"github.com/pwplabs/pwp/internal/version"
)

func main() {
	cfg, err := parseArgsAndConfig()
	if err != nil {
		os.Exit(1)
	}

	// stdout carries the live display; all logging goes to stderr
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	logVersionInfo(log)
	log.Debug("Configuration loaded", "config", cfg.String())

	smtHint(log, cfg)

	services := createServices(log, cfg)
	if err := service.Init(log, services); err != nil {
		log.Error("Initialization failed", "error", err)
		os.Exit(1)
	}

	if err := service.Run(context.Background(), log, services); err != nil {
		log.Error("pwp terminated with an error", "error", err)
		os.Exit(1)
	}
	log.Info("Graceful shutdown completed")
}

func parseArgsAndConfig() (*config.Config, error) {
	const appName = "pwp"
	app := kingpin.New(appName, "Lightweight RAPL power monitor (per socket / core / MHz).")

	configFile := app.Flag("config.file", "Path to YAML configuration file").String()
	updateConfig := config.RegisterFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log := logger.New("info", "text", os.Stderr)
	cfg := config.DefaultConfig()
	if *configFile != "" {
		loadedCfg, err := config.FromFile(*configFile)
		if err != nil {
			log.Error("Error loading config file", "path", *configFile, "error", err.Error())
			return nil, err
		}
		cfg = loadedCfg
	}

	// command line flags override config file settings
	if err := updateConfig(cfg); err != nil {
		log.Error("Invalid configuration", "error", err.Error())
		return nil, err
	}

	return cfg, nil
}

func logVersionInfo(log *slog.Logger) {
	v := version.Info()
	log.Debug("pwp version information",
		"version", v.Version,
		"buildTime", v.BuildTime,
		"gitCommit", v.GitCommit,
		"goVersion", v.GoVersion,
		"goOS", v.GoOS,
		"goArch", v.GoArch,
	)
}

// smtHint notes once, at startup, that power is being divided by logical
// threads on a machine where SMT is active.
func smtHint(log *slog.Logger, cfg *config.Config) {
	if !cfg.Sampling.Logical {
		return
	}

	logical, err := cpu.Counts(true)
	if err != nil {
		return
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		return
	}

	if logical > physical {
		log.Info("SMT detected; dividing power by logical threads",
			"logical", logical, "physical", physical)
	}
}

func createServices(log *slog.Logger, cfg *config.Config) []service.Service {
	var source device.CounterSource
	if cfg.Sampling.Fake {
		source = device.NewFakeSource(device.WithFakeLogger(log))
	} else {
		source = device.NewRaplSource(device.WithRaplLogger(log))
	}

	presenterOpts := []display.OptionFn{
		display.WithLogger(log),
		display.WithOutput(os.Stdout),
		display.WithLogicalUnits(cfg.Sampling.Logical),
		display.WithMaxLines(cfg.Display.MaxLines),
		display.WithNoRoll(cfg.Display.NoRoll),
	}

	var presenter monitor.Presenter
	switch cfg.Mode() {
	case config.ModeJSON:
		presenter = display.NewJSONLines(presenterOpts...)
	case config.ModeFullscreen:
		presenter = display.NewFullscreen(presenterOpts...)
	default:
		presenter = display.NewTable(presenterOpts...)
	}

	pm := monitor.NewPowerMonitor(
		source,
		presenter,
		monitor.WithLogger(log),
		monitor.WithInterval(time.Duration(cfg.Sampling.Interval*float64(time.Second))),
		monitor.WithLogicalUnits(cfg.Sampling.Logical),
		monitor.WithCostPerKWh(cfg.Display.CostPerKWh),
	)

	return []service.Service{
		service.NewSignalHandler(log, os.Interrupt, syscall.SIGTERM),
		pm,
	}
}
