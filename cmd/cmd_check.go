// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meridianmedia/prc/coverage"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check POSTCODE",
	Short: "Check whether a postcode is covered",
	Long: `Evaluates a single postcode against the configured service area.

$ prc check "FY1 1AA"
FY1 1AA	inside
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), options, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.evaluator.Check(cmd.Context(), args[0], a.settings.Current())
		if err != nil {
			return fmt.Errorf("%s: %w", coverage.UserMessage(err), err)
		}

		if checkJSON {
			return json.NewEncoder(os.Stdout).Encode(res)
		}

		fmt.Println(formatResult(args[0], res))

		return nil
	},
}

func formatResult(postcode string, res *coverage.Result) string {
	verdict := "outside"
	if res.Inside {
		verdict = "inside"
	}

	if res.Distance != nil {
		return fmt.Sprintf("%s\t%s\t%.2f %s", postcode, verdict, *res.Distance, res.Unit)
	}

	return fmt.Sprintf("%s\t%s", postcode, verdict)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the result as JSON")
}
