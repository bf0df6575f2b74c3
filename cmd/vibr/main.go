package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/sglre6355/vibr/internal/bot"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"

	_ "github.com/sglre6355/vibr/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/vibr
var version = "dev"

var (
	app      = kingpin.New("vibr", "Discord music bot backed by Lavalink")
	envFile  = app.Flag("env-file", "Path to a .env file to load").Default(".env").String()
	logLevel = app.Flag("log-level", "Override LOG_LEVEL").Enum("debug", "info", "warn", "error")
	verbose  = app.Flag("verbose", "Enable debug logging").Short('v').Bool()

	listFiltersCmd = app.Command("list-filters", "List available audio filters and exit")
)

func init() {
	app.Version(version)
	app.Command("start", "Start the bot (default)").Default()
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		for _, label := range domain.PresetFilterLabels() {
			fmt.Println(label)
		}
		return
	}

	// Missing .env files are fine, the environment may be set already
	_ = godotenv.Load(*envFile)

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	slog.SetDefault(newLogger(cfg))

	slog.Info("starting vibr", "version", version)

	// Create and configure bot
	b := bot.NewBot(cfg)
	if err := b.LoadModules(); err != nil {
		slog.Error("failed to load modules", "error", err)
		os.Exit(1)
	}

	// Start bot
	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
}

func newLogger(cfg *bot.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
