package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the answer pipeline caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-cache hit rates and utilization",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cache instances",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if cacheManager == nil {
		return errors.New("cache manager not configured")
	}

	snapshot := cacheManager.Snapshot()

	roles := make([]string, 0, len(snapshot))
	for role := range snapshot {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	for _, role := range roles {
		s := snapshot[cache.Role(role)]
		cmd.Printf("%s:\n", role)
		cmd.Printf("  size:        %d / %d (%.0f%% full)\n",
			s.Info.Size, s.Info.MaxSize, s.Info.Utilization*100)
		cmd.Printf("  hit rate:    %.1f%% (%d hits, %d misses)\n",
			s.Stats.HitRate*100, s.Stats.Hits, s.Stats.Misses)
		cmd.Printf("  evictions:   %d\n", s.Stats.Evictions)
		cmd.Println()
	}

	status, notes := cacheManager.HealthCheck()
	cmd.Printf("Health: %s\n", status)
	for _, note := range notes {
		cmd.Printf("  - %s\n", note)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheManager == nil {
		return errors.New("cache manager not configured")
	}

	cacheManager.ClearAll()
	cmd.Println("All caches cleared.")
	return nil
}
