// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/meridianmedia/prc/utils"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the persistent geocode cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired entries from the DuckDB cache",
	Long: `Expired entries are never served, but they stay on disk until purged.
Redis expires its keys on its own and needs no purge.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openDuckDBStore(options.CachePath)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		removed, err := store.Purge(cmd.Context())
		if err != nil {
			return err
		}

		left, err := store.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("counting cache entries: %w", err)
		}

		fmt.Printf("Removed %s expired entries, %s left in %s\n",
			utils.FormatInt(removed), utils.FormatInt(int64(left)), options.CachePath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
