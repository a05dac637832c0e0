package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"helios/internal/config"
	"helios/internal/session"
	"helios/internal/synth"
	"helios/internal/util"
	"helios/pkg/helios"
)

func main() {
	configPath := flag.String("config", envOr("HELIOS_CONFIG", "config/helios.yaml"), "path to YAML config")
	baseURL := flag.String("url", "", "backend base URL (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}

	// Stdout belongs to the terminal UI.
	logger, logFile, err := util.NewFileLogger(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	clock := synth.SystemClock{}
	sess := session.New(session.Config{
		Builder:         synth.NewBuilderWindow(clock, cfg.Synth.Lookback.Std(), cfg.Synth.Interval.Std()),
		Clock:           clock,
		Logger:          logger,
		DefaultQuantity: cfg.Ticket.DefaultQuantity,
		WatchQuantity:   cfg.Ticket.WatchQuantity,
	})

	client := helios.NewClient(cfg.Server.BaseURL,
		helios.WithTimeout(cfg.Server.Timeout.Std()),
		helios.WithRetry(cfg.Server.RetryAttempts, cfg.Server.RetryDelay.Std()),
		helios.WithSessionID(sess.ID()),
	)
	logger.Info("starting helios-client", "base_url", cfg.Server.BaseURL, "session", sess.ID())

	p := tea.NewProgram(
		newModel(client, sess, cfg, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
