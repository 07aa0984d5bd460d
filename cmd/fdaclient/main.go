// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package main is the fdaclient command line: an MCP client for OpenFDA
// servers reached over SSE or streamable HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcpany/fdaclient/pkg/app"
	"github.com/mcpany/fdaclient/pkg/appconsts"
	"github.com/mcpany/fdaclient/pkg/config"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/metrics"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newRunner builds the command runner once settings are known. Tests replace
// it.
var newRunner = func(settings *config.Settings, out io.Writer) (app.Runner, error) {
	return app.NewApplication(settings, out)
}

// newRootCmd creates the root command and its subcommands. Without a
// subcommand the client runs the exploration flow against the selected
// profile.
func newRootCmd() *cobra.Command {
	var exploreTool string

	rootCmd := &cobra.Command{
		Use:          appconsts.Name,
		Short:        "MCP client for OpenFDA drug information servers.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, r app.Runner) error {
				return r.Explore(ctx, exploreTool)
			})
		},
	}
	rootCmd.Flags().StringVar(&exploreTool, "tool", "", "Tool to call at the end of the exploration; defaults to the first tool.")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Show server info, capabilities, tools, resources and prompts, then call one tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tool, _ := cmd.Flags().GetString("tool")
			return run(cmd, func(ctx context.Context, r app.Runner) error {
				return r.Explore(ctx, tool)
			})
		},
	}
	exploreCmd.Flags().String("tool", "", "Tool to call; defaults to the first tool.")
	rootCmd.AddCommand(exploreCmd)

	rootCmd.AddCommand(
		simpleCmd("info", "Print server identity and capabilities", app.Runner.Info),
		simpleCmd("tools", "List the tools and their parameters", app.Runner.Tools),
		simpleCmd("resources", "List the resources", app.Runner.Resources),
		simpleCmd("prompts", "List the prompts", app.Runner.Prompts),
		simpleCmd("health", "Check that the server is reachable and completes the MCP handshake", app.Runner.Health),
	)

	openfdaCmd := simpleCmd("openfda", "Run the OpenFDA drug information walkthrough", app.Runner.Walkthrough)
	openfdaCmd.Aliases = []string{"walkthrough"}
	rootCmd.AddCommand(openfdaCmd)

	callCmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call one tool with JSON arguments, or with arguments synthesized from its schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")
			return run(cmd, func(ctx context.Context, r app.Runner) error {
				return r.Call(ctx, args[0], raw)
			})
		},
	}
	callCmd.Flags().String("args", "", `Arguments as a JSON object, e.g. '{"drug_name":"aspirin"}'. Synthesized when empty.`)
	rootCmd.AddCommand(callCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fdaclient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appconsts.Name, appconsts.Version)
			if err != nil {
				return fmt.Errorf("failed to print version: %w", err)
			}
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)

	config.BindFlags(rootCmd)

	return rootCmd
}

func simpleCmd(use, short string, fn func(app.Runner, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, r app.Runner) error {
				return fn(r, ctx)
			})
		},
	}
}

// run loads settings, sets up logging and metrics, and hands a runner to fn
// under a context cancelled by SIGINT or SIGTERM.
func run(cmd *cobra.Command, fn func(ctx context.Context, r app.Runner) error) error {
	settings, err := config.Load(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	var logOutput io.Writer = os.Stderr
	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open logfile: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOutput = f
	}
	logging.Init(level, logOutput)
	log := logging.GetLogger().With("command", cmd.Name())

	if err := metrics.Initialize(settings.MetricsSink); err != nil {
		return err
	}
	if settings.MetricsSink == metrics.SinkPrometheus {
		srv, err := metrics.StartServer(settings.MetricsListenAddress)
		if err != nil {
			return err
		}
		log.Info("Serving metrics", "address", srv.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(settings, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := fn(ctx, runner); err != nil {
		log.Error("Command failed", "error", err)
		return err
	}
	metrics.WriteSummary(cmd.OutOrStdout())
	return nil
}

// main runs the root command and exits with status 1 on failure. Cobra
// prints the error to stderr.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
