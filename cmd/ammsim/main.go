package main

import (
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/defistate/defistate-amm-go/cmd/ammsim/config"
	"github.com/defistate/defistate-amm-go/protocols/poolregistry"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	close := func() {
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("Failed to load configuration", "error", err)
		close()
	}

	// create the log handler; stdout carries the final view
	level, _ := config.ParseLevel(cfg.LogLevel)
	rootLogHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	rootLogger := slog.New(rootLogHandler)
	prometheusRegistry := prometheus.DefaultRegisterer

	system, err := poolregistry.NewPoolSystem(&poolregistry.Config{
		Registry: prometheusRegistry,
		Logger:   rootLogger.With("component", "pool-system"),
	})
	if err != nil {
		rootLogger.Error("Failed to initialize Pool System", "error", err)
		close()
	}

	stateOps, err := poolregistry.NewStateOps(rootLogger.With("component", "state-ops"), prometheusRegistry)
	if err != nil {
		rootLogger.Error("Failed to initialize State Ops", "error", err)
		close()
	}

	report, err := simulate(cfg, system, stateOps, rootLogger.With("component", "simulator"))
	if err != nil {
		rootLogger.Error("Simulation aborted", "error", err)
		close()
	}
	rootLogger.Info("Simulation finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"fromSequence", report.Diff.FromSequence,
		"toSequence", report.Diff.ToSequence,
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report.Final); err != nil {
		rootLogger.Error("Failed to write final view", "error", err)
		close()
	}
}

func loadConfig() (*config.SimConfig, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
