package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearclaim/patra/internal/core/domain"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [document-id]",
	Short: "Produce a structured analysis of an indexed document",
	Long: `Reconstructs an indexed document from its stored chunks and produces
a structured report: summary, novelty score, potential issues,
recommendations and similar indexed documents. The document ID is the
file name used at ingest time, for example proposal.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	analysis, err := analysisService.Analyze(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputAnalysis(cmd, analysis)
}

func outputAnalysis(cmd *cobra.Command, analysis *domain.Analysis) error {
	cmd.Printf("Title:      %s\n", analysis.Title)
	cmd.Printf("Date:       %s\n", analysis.Date)
	cmd.Printf("Applicant:  %s\n", analysis.Applicant)
	cmd.Printf("Novelty:    %d/100\n", analysis.NoveltyScore)
	cmd.Println()
	cmd.Println("Summary:")
	cmd.Printf("  %s\n", analysis.Summary)

	if len(analysis.PotentialIssues) > 0 {
		cmd.Println()
		cmd.Println("Potential issues:")
		for _, issue := range analysis.PotentialIssues {
			cmd.Printf("  - %s\n", issue)
		}
	}

	if len(analysis.Recommendations) > 0 {
		cmd.Println()
		cmd.Println("Recommendations:")
		for _, rec := range analysis.Recommendations {
			cmd.Printf("  - %s\n", rec)
		}
	}

	if len(analysis.SimilarPatents) > 0 {
		cmd.Println()
		cmd.Println("Similar patents:")
		for i, sp := range analysis.SimilarPatents {
			title := sp.Title
			if title == "" {
				title = sp.ID
			}
			cmd.Printf("  [%d] %s (%.0f%% similar)\n", i+1, title, sp.Similarity)
			if sp.Excerpt != "" {
				cmd.Printf("      %s\n", sp.Excerpt)
			}
		}
	}

	return nil
}
