// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the coverage settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings, defaults included",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		settings, err := loadSettings(options)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(settings.Current(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}

		fmt.Println(string(data))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
