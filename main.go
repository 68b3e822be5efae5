package main

import (
	"flag"
	"log"
	"os"

	"github.com/ngenohkevin/hivedeck-sysstat/config"
	"github.com/ngenohkevin/hivedeck-sysstat/internal/logging"
	"github.com/ngenohkevin/hivedeck-sysstat/internal/server"
)

func main() {
	debug := flag.Bool("debug", false, "allow every CORS origin and log at debug level")
	envFile := flag.String("env-file", "", "path to a .env file (default $ENV_FILE or .env)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}

	logger := logging.New(os.Stdout, cfg.EffectiveLogLevel(), cfg.LogFormat)
	if cfg.Debug {
		logger.Warn("debug mode: CORS allows every origin")
	}

	// Create and run server
	srv := server.New(cfg, logger, nil)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
