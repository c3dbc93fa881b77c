package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kwame/agrimarket/internal/db"
	"github.com/kwame/agrimarket/internal/importer"
	"github.com/kwame/agrimarket/internal/llm"
	"github.com/kwame/agrimarket/internal/observability"
	"github.com/kwame/agrimarket/internal/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import farmer profiles from a CSV file",
	Long: `Run one bulk import session from the shell: parse a delimited file,
map its columns onto farmer profile fields, and commit the batch to the
database.

Columns are mapped with the AI collaborator by default. Pass --map to
supply a reviewed mapping file instead (a JSON object from canonical
field to source header), which also works without an API key.`,
	RunE: runImport,
}

var (
	importFile        string
	importMapFile     string
	importDryRun      bool
	importDatabaseURL string
	importAPIKey      string
	importVerbose     bool
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the CSV file to import (required)")
	importCmd.Flags().StringVar(&importMapFile, "map", "", "Path to a JSON column mapping file (skips the AI suggestion)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and preview the batch without committing")
	importCmd.Flags().StringVar(&importDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	importCmd.Flags().StringVar(&importAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(importCmd)
}

// fileMapper satisfies importer.Mapper with a pre-reviewed column map loaded
// from disk, standing in for the AI collaborator.
type fileMapper struct {
	colMap types.ColumnMap
}

func (m fileMapper) SuggestColumnMap(_ context.Context, _ []string) (types.ColumnMap, error) {
	return m.colMap, nil
}

func runImport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	printer := observability.NewPrinter(os.Stdout)

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	session := importer.NewSession()
	fileName := filepath.Base(importFile)
	if err := session.Begin(fileName, int64(len(data)), string(data)); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	if importVerbose {
		printer.PrintTable(fileName, session.Table())
	}

	mapper, cleanup, err := buildMapper(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	colMap, mapErr := session.RequestMapping(ctx, mapper)
	if mapErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: column mapping suggestion failed: %v\n", mapErr)
	}
	if importVerbose {
		printer.PrintColumnMap(colMap)
	}

	records, err := session.ConfirmMapping(colMap)
	if err != nil {
		return fmt.Errorf("column mapping rejected (fix it and retry with --map): %w", err)
	}

	if importVerbose {
		printer.PrintImportPreview(records)
	}

	if importDryRun {
		_, _ = fmt.Fprintf(os.Stdout, "Dry run: %d valid records, nothing committed\n", len(records))
		return nil
	}

	databaseURL := importDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL environment variable or use --db-url flag)")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	created, err := session.Commit(ctx, database, database)
	if err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	if importVerbose {
		printer.PrintImportResult(fileName, created)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Imported %d farmers from %s\n", len(created), fileName)
	}

	return nil
}

// buildMapper returns the column mapper for this run: a file-backed one when
// --map is given, otherwise the AI collaborator.
func buildMapper(ctx context.Context) (importer.Mapper, func(), error) {
	noop := func() {}

	if importMapFile != "" {
		data, err := os.ReadFile(importMapFile)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read mapping file: %w", err)
		}
		var colMap types.ColumnMap
		if err := json.Unmarshal(data, &colMap); err != nil {
			return nil, noop, fmt.Errorf("failed to parse mapping file: %w", err)
		}
		return fileMapper{colMap: colMap}, noop, nil
	}

	apiKey := importAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, noop, fmt.Errorf("API key is required for AI mapping (set GEMINI_API_KEY environment variable, use --api-key, or supply --map)")
	}

	client, err := llm.NewGeminiClient(ctx, nil, apiKey)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create AI client: %w", err)
	}
	return llm.NewColumnMapper(client), func() { _ = client.Close() }, nil
}
