// cmd/eligibility-cli/cache.go
package main

import (
	"fmt"

	"loan-eligibility-workers/internal/common/config"
	"loan-eligibility-workers/internal/common/database"
	"loan-eligibility-workers/internal/eligibility/classifier"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the prediction cache",
	}
	cmd.AddCommand(newCacheFlushCmd())
	return cmd
}

// Run after deploying a new model so cached labels from the old one are not served.
func newCacheFlushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete cached predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("redis-addr")
			password, _ := cmd.Flags().GetString("redis-password")
			db, _ := cmd.Flags().GetInt("redis-db")
			prefix, _ := cmd.Flags().GetString("prefix")

			rdb, err := database.NewRedis(config.RedisConfig{Address: addr, Password: password, DB: db})
			if err != nil {
				return err
			}
			defer rdb.Close()

			deleted, err := rdb.FlushPrefix(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("flush %s*: %w", prefix, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cached predictions\n", deleted)
			return nil
		},
	}
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().String("prefix", classifier.CacheKeyPrefix, "Key prefix to delete")
	return cmd
}
