// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/meridianmedia/prc/coverage"
	"github.com/meridianmedia/prc/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var batchMaxProcs int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check many postcodes read from stdin",
	Long: `Reads one postcode per line and prints the verdict for each, in input order.

$ printf 'FY1 1AA\nLA1 1AA\n' | prc batch
FY1 1AA	inside
LA1 1AA	outside
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), options, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter postcodes to check, one per line…")
		}

		postcodes, err := readLines(os.Stdin)
		if err != nil {
			return err
		}

		lines, failed := runBatch(cmd.Context(), a.evaluator, a.settings.Current(), postcodes, batchMaxProcs)
		for _, line := range lines {
			fmt.Println(line)
		}

		if failed > 0 {
			log.Printf("[prc] %s of %s checks failed",
				utils.FormatInt(int64(failed)), utils.FormatInt(int64(len(postcodes))))
		}

		return nil
	},
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return lines, nil
}

// runBatch checks every postcode with at most maxProcs checks in flight and
// returns one output line per postcode, in input order.
func runBatch(ctx context.Context, evaluator *coverage.Evaluator, cfg coverage.Config, postcodes []string, maxProcs int) ([]string, int) {
	if maxProcs <= 0 {
		maxProcs = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(postcodes),
			progressbar.OptionSetDescription("Checking postcodes"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	lines := make([]string, len(postcodes))
	semaphore := make(chan struct{}, maxProcs)

	for i, pc := range postcodes {
		wg.Add(1)

		go func(i int, pc string) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			res, err := evaluator.Check(ctx, pc, cfg)
			if err != nil {
				lines[i] = fmt.Sprintf("%s\terror\t%s", pc, coverage.UserMessage(err))

				mu.Lock()
				failed++
				mu.Unlock()
			} else {
				lines[i] = formatResult(pc, res)
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, pc)
	}

	wg.Wait()

	return lines, failed
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(
		&batchMaxProcs,
		"max-procs",
		4,
		"Max number of concurrent checks. Defaults to the number of CPUs when 0",
	)
}
