package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"meeting_cost_tui/internal"
	"meeting_cost_tui/internal/config"
	"meeting_cost_tui/internal/meeting"
	"meeting_cost_tui/internal/stats"
	"meeting_cost_tui/internal/storage"
	"meeting_cost_tui/internal/storage/redis"
	"meeting_cost_tui/internal/storage/sqlite"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "meeting_cost_tui",
	Short: "Track what your meetings cost while they happen",
	Long: `A terminal meeting-cost tracker. A timer measures elapsed meeting time,
you enter participant counts for two groups, and configured hourly rates turn
the elapsed time into cost, people-hours and people-days. State survives
restarts.`,
	Version: version,
	RunE:    run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "meeting_cost.yaml", "Path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A .env file may carry MCC_* overrides; its absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	kv, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()

	safe := storage.NewSafe(kv, logger)

	opts := meeting.Options{
		TickInterval:    cfg.Timer.ParsedTickInterval(),
		SessionExpiry:   cfg.Timer.ParsedSessionExpiry(),
		MaxParticipants: cfg.Timer.MaxParticipants,
	}

	var counter *stats.Client
	if cfg.Stats.Enabled {
		counter = stats.New(cfg.Stats.URL, cfg.Stats.Origin, logger)
		opts.OnMeetingStart = counter.Increment
	}

	eng := meeting.NewEngine(safe, logger, opts)
	defer eng.Close()

	m := internal.NewModel(eng)
	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			p.Send(internal.MsgTick{})
		}
	}()

	if counter != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			p.Send(internal.MsgStatsCount{Count: counter.Read(ctx)})
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Logs go to stderr; stdout belongs to the TUI.
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func openStorage(cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Type {
	case "redis":
		return redis.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return sqlite.Open(cfg.Path)
	}
}
