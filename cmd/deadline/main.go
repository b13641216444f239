// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The deadline command runs other commands under a time budget and keeps the
// history of the runs.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/acquirecloud/deadline/golibs/context"
	"github.com/acquirecloud/deadline/golibs/logging"
	"github.com/acquirecloud/deadline/pkg/journal"
	"github.com/acquirecloud/deadline/pkg/runner"
	"github.com/acquirecloud/deadline/pkg/version"
	"github.com/acquirecloud/deadline/pkg/worker"
	"github.com/spf13/cobra"
)

func main() {
	// the worker copies of the binary never reach the command line handling
	if worker.Init() {
		return
	}

	exitCode := 0
	root := newRootCmd(&exitCode)
	ctx := context.NewSignalsContext(syscall.SIGINT, syscall.SIGTERM)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func newRootCmd(exitCode *int) *cobra.Command {
	var cfgFile string
	var logLevel string

	root := &cobra.Command{
		Use:           "deadline",
		Short:         "run commands under a time budget",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(parseLogLevel(logLevel))
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "the configuration file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "the log level: error, warn, info, debug or trace")

	root.AddCommand(newRunCmd(&cfgFile, exitCode))
	root.AddCommand(newHistoryCmd(&cfgFile))
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd(cfgFile *string, exitCode *int) *cobra.Command {
	var timeout string
	var isolated bool

	cmd := &cobra.Command{
		Use:   "run --timeout <spec> [--isolated] -- <command> [args...]",
		Short: "run the command under the deadline",
		Long: `Runs the command and enforces the deadline on it. The timeout spec may be
plain seconds ("30", "2.5"), a duration ("1h30m", "1h 30m 5s"), a clock form
("1:30:05") or an absolute instant ("@2026-01-02T15:04:05Z"). When the
deadline passes the command is interrupted and the run is recorded as
expired. With --isolated the command is driven by a separate worker copy of
this binary which is killed outright on the expiry.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runner.BuildConfig(*cfgFile)
			if err != nil {
				return err
			}
			code, err := runner.Run(cmd.Context(), cfg, runner.RunParams{
				Spec:     timeout,
				Isolated: isolated,
				Cmd:      args,
			})
			if err != nil {
				*exitCode = 1
				return err
			}
			*exitCode = code
			return nil
		},
	}
	cmd.Flags().StringVarP(&timeout, "timeout", "t", "", "the timeout spec (required)")
	cmd.Flags().BoolVar(&isolated, "isolated", false, "enforce the deadline in a separate worker process")
	_ = cmd.MarkFlagRequired("timeout")
	return cmd
}

func newHistoryCmd(cfgFile *string) *cobra.Command {
	var match string
	var page string
	var limit int
	var purge bool

	cmd := &cobra.Command{
		Use:   "history [--match <glob>] [--limit N] [--page <id>] [--purge]",
		Short: "show or purge the recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runner.BuildConfig(*cfgFile)
			if err != nil {
				return err
			}
			if purge {
				purged, err := runner.Purge(cmd.Context(), cfg, match)
				if err != nil {
					return err
				}
				fmt.Printf("purged %d record(s)\n", purged)
				return nil
			}
			res, err := runner.History(cmd.Context(), cfg, journal.Query{NamePattern: match, Page: page, Limit: limit})
			if err != nil {
				return err
			}
			printRecords(res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "the glob over the command names")
	cmd.Flags().StringVar(&page, "page", "", "the record ID the page starts from")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "the page size, 50 if not set")
	cmd.Flags().BoolVar(&purge, "purge", false, "remove the matched records instead of listing them")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("deadline", version.BuildVersionString())
		},
	}
}

func printRecords(res *journal.QueryResult) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tNAME\tSPEC\tMODE\tOUTCOME\tELAPSED\tERROR")
	for _, r := range res.Records {
		mode := "in-process"
		if r.Isolated {
			mode = "isolated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Name, r.Spec, mode, r.Outcome, r.Elapsed, r.Error)
	}
	_ = tw.Flush()
	if res.NextPageID != "" {
		fmt.Printf("... %d total, next page: --page %s\n", res.Total, res.NextPageID)
	}
}

func parseLogLevel(s string) logging.Level {
	switch strings.ToLower(s) {
	case "error":
		return logging.ERROR
	case "info":
		return logging.INFO
	case "debug":
		return logging.DEBUG
	case "trace":
		return logging.TRACE
	default:
		return logging.WARN
	}
}
