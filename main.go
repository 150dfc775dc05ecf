// main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/scraper"
	"github.com/gewnthar/airquality/services"
)

// Candidate config locations, checked in order. None present means defaults.
var configPaths = []string{
	"config/config.yaml",
	"config.yaml",
}

func findConfig() string {
	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func main() {
	configPath := findConfig()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Error loading configuration", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("Configuration loaded",
		"path", configPath,
		"country", cfg.Source.CountryCode,
		"city", cfg.Source.CityName,
		"pollutants", cfg.Source.Pollutants,
		"data_dir", cfg.Paths.DataDir,
		"db_driver", cfg.Database.Driver)

	// Interrupting mid-download leaves only a temporary .part file behind.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := services.NewPipeline(cfg, scraper.NewDownloader(cfg.Download, logger), logger)
	for _, u := range pipeline.RequestURLs() {
		logger.Debug("request url", "url", u)
	}

	table, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("Pipeline failed", "error", err)
		stop()
		os.Exit(1)
	}

	if n := table.Len(); n > 0 {
		logger.Info("Table ready",
			"table", table.Name,
			"rows", n,
			"first", table.Rows[0].String(),
			"last", table.Rows[n-1].String())
	}
}
