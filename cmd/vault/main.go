package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"vault/internal/api"
	"vault/internal/config"
	"vault/internal/tui"
	"vault/internal/vault"
)

const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Load()
	if *configPath != "" {
		if err := config.LoadFile(cfg, *configPath); err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The TUI owns the terminal; structured logs go to a file.
	logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("vault client starting",
		"environment", cfg.Environment,
		"server_url", cfg.ServerURL,
		"company_id", cfg.CompanyID,
	)

	client := api.NewHTTPClient(cfg.ServerURL)
	client.SetAuthToken(cfg.AuthToken)

	session := vault.NewSession(client, cfg.CompanyID, logger)
	if err := session.Refresh(context.Background()); err != nil {
		log.Fatalf("Failed to load vault: %v", err)
	}

	uploader := vault.NewUploader(client, cfg.CompanyID, logger)

	if err := tui.Run(tui.NewModel(session, uploader, logger)); err != nil {
		logger.Error("tui exited with error", "error", err)
		os.Exit(1)
	}
}
