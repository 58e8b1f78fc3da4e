// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/internal/config"
	"github.com/blinklabs-io/govern/internal/node"
	"github.com/blinklabs-io/govern/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "govern"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun(out io.Writer) *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(out, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// withNode opens the node for a one-shot command. Logs go to stderr so
// command output on stdout stays machine readable.
func withNode(cmd *cobra.Command, fn func(*govern.Node) error) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return fmt.Errorf("no config found in context")
	}
	logger := commonRun(os.Stderr)
	n, err := node.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
		}
	}()
	return fn(n)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Shareholder governance engine",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd, args)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(initCommand())
	rootCmd.AddCommand(daoCommand())
	rootCmd.AddCommand(deployCommand())
	rootCmd.AddCommand(proposeCommand())
	rootCmd.AddCommand(proposalsCommand())
	rootCmd.AddCommand(statusCommand())
	rootCmd.AddCommand(voteCommand())
	rootCmd.AddCommand(votesCommand())
	rootCmd.AddCommand(votedCommand())
	rootCmd.AddCommand(historyCommand())
	rootCmd.AddCommand(executeCommand())
	rootCmd.AddCommand(restoreCommand())
	rootCmd.AddCommand(setMinVotePowerCommand())
	rootCmd.AddCommand(sweepCommand())
	rootCmd.AddCommand(versionCommand())

	// Execute cobra command
	if err := rootCmd.Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}
