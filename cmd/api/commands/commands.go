package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastlab/regain-api/internal/infrastructure/config"
	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
	"github.com/fastlab/regain-api/internal/infrastructure/server"
	"github.com/fastlab/regain-api/internal/seed"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local API server",
		Long:  "Start the local API server with the JSON-file datastore, media serving and magic-link issuance",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the development database",
		Long:  "Overwrite the JSON database with fixture users, groups and exercises, derive the group-exercise join table and generate placeholder images",
		Run: func(cmd *cobra.Command, args []string) {
			runSeed()
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print regain-api version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			fmt.Printf("%s %s (%s)\n", cfg.App.Name, cfg.App.Version, cfg.App.Environment)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store := datastore.New(cfg.Store.Path, appLogger)

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting regain-api server",
		"addr", cfg.Server.GetAddr(),
		"database", cfg.Store.Path,
		"environment", cfg.App.Environment,
	)

	go func() {
		if err := srv.Start(cfg.Server.GetAddr()); err != nil {
			appLogger.Infow("Server stopped", "reason", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
	}
}

func runSeed() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store := datastore.New(cfg.Store.Path, appLogger)

	if err := seed.New(store, cfg.Media.FilesDir, appLogger).Run(); err != nil {
		appLogger.Fatalw("Seeding failed", "error", err)
	}
}
