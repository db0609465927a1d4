package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearclaim/patra/internal/core/ports/driving"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf-path]",
	Short: "Index a PDF document",
	Long: `Extracts text from a PDF, splits it into chunks and stores the
chunks in the vector index. Chunks already present from an earlier run
of the same document are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	result, err := ingestService.Ingest(context.Background(), path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputIngestSummary(cmd, result)
}

func outputIngestSummary(cmd *cobra.Command, result *driving.IngestResult) error {
	cmd.Printf("Ingested %s\n", result.DocumentID)
	cmd.Printf("  Pages:          %d\n", result.Pages)
	cmd.Printf("  Chunks:         %d\n", result.TotalChunks)
	cmd.Printf("  Newly indexed:  %d\n", result.NewChunks)
	cmd.Printf("  Already known:  %d\n", result.SkippedChunks)
	return nil
}
