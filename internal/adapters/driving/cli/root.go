// Package cli provides the cobra command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/cache"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute runs. Commands check for nil
// and fail with a clear error instead of panicking.
var (
	answerService   driving.AnswerService
	indexingService driving.IndexingService
	cacheManager    *cache.Manager
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Ask questions about indexed documents",
	Long: `Lectern answers natural-language questions about documents using
retrieval-augmented generation: document chunks are embedded into a vector
index, relevant passages are retrieved and reranked per question, and a
language model produces a structured, cited answer.`,
	SilenceUsage: true,
}

// Services bundles everything the commands need.
type Services struct {
	Answer   driving.AnswerService
	Indexing driving.IndexingService
	Caches   *cache.Manager
}

// SetServices injects the service implementations used by the commands.
func SetServices(s Services) {
	answerService = s.Answer
	indexingService = s.Indexing
	cacheManager = s.Caches
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
