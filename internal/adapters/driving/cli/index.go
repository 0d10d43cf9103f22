package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

var (
	indexDocumentID   string
	indexCollectionID string
	indexTitle        string
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index a text file for question answering",
	Long: `Enqueues a document's text for background ingestion: the text is
chunked, embedded and stored in the vector index. Use "lectern status"
to follow the task's progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexDocumentID, "id", "i", "", "document ID (defaults to the file name)")
	indexCmd.Flags().StringVarP(&indexCollectionID, "collection", "c", "", "collection ID")
	indexCmd.Flags().StringVarP(&indexTitle, "title", "t", "", "document title (defaults to the file name)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	documentID := indexDocumentID
	if documentID == "" {
		documentID = base
	}
	title := indexTitle
	if title == "" {
		title = base
	}

	taskID, err := indexingService.Enqueue(context.Background(), driving.IndexRequest{
		DocumentID:   documentID,
		CollectionID: indexCollectionID,
		Title:        title,
		Text:         string(data),
	})
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}

	cmd.Printf("Indexing queued for document %s (task %s)\n", documentID, taskID)
	return nil
}
