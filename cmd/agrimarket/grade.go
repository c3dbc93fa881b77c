package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kwame/agrimarket/internal/db"
	"github.com/kwame/agrimarket/internal/grading"
	"github.com/kwame/agrimarket/internal/observability"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Compute a farmer's trust grade",
	Long:  "Load a farmer profile from the database and print the trust grade (score, stars, and badge) computed from its current signals.",
	RunE:  runGrade,
}

var (
	gradeFarmerID    string
	gradeDatabaseURL string
	gradeJSON        bool
)

func init() {
	gradeCmd.Flags().StringVar(&gradeFarmerID, "farmer-id", "", "Farmer ID to grade (required)")
	gradeCmd.Flags().StringVar(&gradeDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "Print the grade as JSON instead of a formatted box")

	_ = gradeCmd.MarkFlagRequired("farmer-id")

	rootCmd.AddCommand(gradeCmd)
}

func runGrade(_ *cobra.Command, _ []string) error {
	farmerID, err := uuid.Parse(gradeFarmerID)
	if err != nil {
		return fmt.Errorf("invalid farmer ID: %w", err)
	}

	databaseURL := gradeDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL environment variable or use --db-url flag)")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	farmer, err := database.GetFarmer(ctx, farmerID)
	if err != nil {
		return fmt.Errorf("failed to load farmer: %w", err)
	}
	if farmer == nil {
		return fmt.Errorf("farmer %s not found", farmerID)
	}

	grade := grading.Compute(farmer, time.Now().UTC())

	if gradeJSON {
		out, err := json.MarshalIndent(grade, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal grade: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", out)
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintGrade(farmer, grade)
	return nil
}
