// Package main provides the entry point for the stdio MCP server.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darkclone9/portfolio-server/internal/analytics"
	"github.com/darkclone9/portfolio-server/internal/config"
	"github.com/darkclone9/portfolio-server/internal/mcp"
	"github.com/darkclone9/portfolio-server/internal/portfolio"
	"github.com/darkclone9/portfolio-server/internal/ratelimit"
	"github.com/darkclone9/portfolio-server/internal/tools"
)

var Version = "dev"

func main() {
	// Logs go to stderr; stdout carries the JSON-RPC stream.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	var (
		ds  *portfolio.Dataset
		err error
	)
	if cfg.DataPath != "" {
		ds, err = portfolio.LoadFile(cfg.DataPath)
	} else {
		ds, err = portfolio.LoadDefault()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dataset")
	}

	store := portfolio.NewStore(ds)
	tracker := analytics.NewTracker(cfg.AnalyticsCapacity)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitRequests)
	defer limiter.Close()

	registry := tools.NewRegistry(limiter, cfg.ToolTimeout)
	if err := tools.RegisterPortfolioTools(registry, store, tracker); err != nil {
		log.Fatal().Err(err).Msg("Failed to register tools")
	}

	srv := mcp.NewServer(registry, Version)
	if err := srv.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("MCP server error")
	}
}
