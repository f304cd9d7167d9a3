// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/meridianmedia/prc/geocode"
	"github.com/spf13/cobra"
)

var (
	geocodeAsBase bool
	geocodeH3Res  int
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode QUERY",
	Short: "Resolve a postcode or address to coordinates",
	Long: `Runs a query through the geocode router, cache included, and prints the
coordinate and its H3 cell, tab separated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), options, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		role := geocode.RoleVisitor
		if geocodeAsBase {
			role = geocode.RoleBase
		}

		c, err := a.router.Geocode(cmd.Context(), args[0], role)
		if err != nil {
			return err
		}

		cell, err := c.Cell(geocodeH3Res)
		if err != nil {
			return err
		}

		fmt.Printf("%s\t%f,%f\t%s\n", args[0], c.Lat, c.Lon, cell)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.Flags().BoolVar(&geocodeAsBase, "base", false, "Cache the answer with the base address TTL")
	geocodeCmd.Flags().IntVar(&geocodeH3Res, "h3-res", 7, "H3 resolution of the printed cell")
}
