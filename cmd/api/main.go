package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/app"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/config"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file with SOCIAL_* overrides")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	agent, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start social client agent: %v", err)
	}

	if err := agent.Run(ctx); err != nil {
		log.Printf("social client agent stopped: %v", err)
		os.Exit(1)
	}
}
