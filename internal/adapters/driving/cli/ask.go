package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

var (
	askDocumentID   string
	askCollectionID string
	askSessionID    string
	askTopK         int
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about an indexed document",
	Long: `Runs the full question-answering pipeline against one document:
retrieves relevant chunks, builds a grounded prompt and returns a
structured answer with citations and a confidence score.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var presetsCmd = &cobra.Command{
	Use:   "presets [title]",
	Short: "Suggest starter questions for a document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPresets,
}

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "document", "d", "", "document ID to ask against (required)")
	askCmd.Flags().StringVarP(&askCollectionID, "collection", "c", "", "collection ID (defaults to the document's collection)")
	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "", "conversation session ID for multi-turn context")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "override the retrieval count")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	_ = askCmd.MarkFlagRequired("document")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(presetsCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer := answerService.Ask(context.Background(), domain.AskRequest{
		Question:     args[0],
		DocumentID:   askDocumentID,
		CollectionID: askCollectionID,
		SessionID:    askSessionID,
		TopK:         askTopK,
	})

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.StructuredAnswer) {
	cmd.Println(answer.MainText)

	if len(answer.KeyFindings) > 0 {
		cmd.Println()
		cmd.Println("Key findings:")
		for i, finding := range answer.KeyFindings {
			cmd.Printf("  %d. %s\n", i+1, finding)
		}
	}

	if answer.Limitations != "" {
		cmd.Println()
		cmd.Printf("Limitations: %s\n", answer.Limitations)
	}

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			cmd.Printf("  [%d] chunk %d (similarity %.2f)\n", src.SourceIndex, src.ChunkIndex, src.Similarity)
		}
	}

	cmd.Println()
	cmd.Printf("Confidence: %.2f", answer.Confidence)
	if answer.IsFallback {
		cmd.Printf("  (fallback: %s)", answer.Metadata.ErrorType)
	}
	if answer.Metadata.CacheHit {
		cmd.Printf("  (cached)")
	}
	cmd.Println()
	cmd.Printf("Processed in %s, %d chunks retrieved\n",
		answer.Metadata.ProcessingTime.Round(time.Millisecond), answer.Metadata.ChunksRetrieved)
}

func runPresets(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	title := ""
	if len(args) > 0 {
		title = args[0]
	}

	for i, question := range answerService.PresetQuestions(title) {
		cmd.Printf("  %d. %s\n", i+1, question)
	}
	return nil
}
