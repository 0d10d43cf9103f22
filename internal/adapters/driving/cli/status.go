package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

var (
	statusTaskID     string
	statusDocumentID string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline health or indexing task status",
	Long: `Without flags, probes each pipeline component and reports overall
health. With --task or --document, reports the status of an indexing task.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusTaskID, "task", "t", "", "indexing task ID")
	statusCmd.Flags().StringVarP(&statusDocumentID, "document", "d", "", "document ID")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusTaskID != "" || statusDocumentID != "" {
		return runTaskStatus(cmd)
	}
	return runHealth(cmd)
}

func runTaskStatus(cmd *cobra.Command) error {
	if indexingService == nil {
		return errors.New("indexing service not configured")
	}

	var status *driving.TaskStatus
	var ok bool
	if statusTaskID != "" {
		status, ok = indexingService.TaskStatus(statusTaskID)
	} else {
		status, ok = indexingService.DocumentStatus(statusDocumentID)
	}
	if !ok {
		cmd.Println("No such task.")
		return nil
	}

	cmd.Printf("Task:     %s\n", status.TaskID)
	cmd.Printf("Document: %s\n", status.DocumentID)
	cmd.Printf("State:    %s\n", status.State)
	if status.ChunksIndexed > 0 || status.ChunksFailed > 0 {
		cmd.Printf("Chunks:   %d indexed, %d failed\n", status.ChunksIndexed, status.ChunksFailed)
	}
	if status.Message != "" {
		cmd.Printf("Message:  %s\n", status.Message)
	}
	cmd.Printf("Enqueued: %s\n", status.EnqueuedAt.Format(time.RFC3339))
	if !status.FinishedAt.IsZero() {
		cmd.Printf("Finished: %s\n", status.FinishedAt.Format(time.RFC3339))
	}
	return nil
}

func runHealth(cmd *cobra.Command) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	report := answerService.Health(context.Background())

	cmd.Printf("Overall: %s\n", report.Status)
	cmd.Println()

	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		component := report.Components[name]
		cmd.Printf("  %-12s %s", name, component.Status)
		if component.Details != "" {
			cmd.Printf("  (%s)", component.Details)
		}
		cmd.Println()
	}
	return nil
}
