package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwame/agrimarket/internal/config"
	"github.com/kwame/agrimarket/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the marketplace, trust grading, bulk
import, and subscription endpoints.

Configuration can be loaded from a JSON file using --config. Environment
variables and command-line flags override config file values.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by env vars and flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var, then 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var fileCfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		fileCfg = *loaded
	}

	// Env vars override the file; explicit flags override both.
	envCfg := config.FromEnv()
	cfg := envCfg.MergeWithDefaults(fileCfg)
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		fmt.Fprintf(os.Stderr, "Warning: GEMINI_API_KEY not set; import mapping suggestions and document extraction are disabled\n")
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		DatabaseURL:       cfg.DatabaseURL,
		APIKey:            cfg.APIKey,
		PaymentsBaseURL:   cfg.PaymentsBaseURL,
		PaymentsSecretKey: cfg.PaymentsSecretKey,
		EmailFrom:         cfg.EmailFrom,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
