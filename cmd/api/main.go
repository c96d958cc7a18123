package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastlab/regain-api/cmd/api/commands"
)

// @title Regain Local API
// @version 1.0
// @description Local development API for the Regain rehabilitation exercise app: JSON-file datastore, media serving and magic-link login.

// @host localhost:3001
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "regain-api",
		Short: "Regain local development API server",
		Long:  `Local development stand-in for the Regain rehabilitation exercise backend: flat-file JSON datastore, exercise/group/user CRUD, media streaming and magic-link login.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
