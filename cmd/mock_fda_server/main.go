// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

// Package main implements a mock OpenFDA MCP server for local runs of the
// client.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/mcpany/fdaclient/pkg/testutil"
	"github.com/spf13/cobra"
)

// main serves the fake drug label tools over streamable HTTP until
// interrupted.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr string
		fail []string
	)
	cmd := &cobra.Command{
		Use:          "mock_fda_server",
		Short:        "Serve canned OpenFDA label data over MCP streamable HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fda := testutil.NewFDAServer()
			for _, drug := range fail {
				fda.FailDrugs[drug] = true
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			mux := http.NewServeMux()
			mux.Handle("/mcp", fda.Handler())
			srv := &http.Server{Handler: mux, ReadHeaderTimeout: 3 * time.Second}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s/mcp\n", ln.Addr())
			logging.GetLogger().Info("Mock server started", "address", ln.Addr().String(), "failing", fail)
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "127.0.0.1:8765", "Address to listen on.")
	cmd.Flags().StringSliceVar(&fail, "fail", nil, "Drugs whose queries return an error.")
	return cmd
}
