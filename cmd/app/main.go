package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CoinScope/internal/di"
	"CoinScope/pkg/config"
	"CoinScope/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	mode := flag.String("mode", server.ModeMenu, "run mode: menu or serve")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	// The menu owns stdout.
	if *mode == server.ModeMenu && cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, *mode); err != nil {
		log.Printf("app error: %v", err)
		stop()
		cleanup()
		os.Exit(1)
	}
}
