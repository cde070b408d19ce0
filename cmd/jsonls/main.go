// Package main provides the CLI entry point for jsonls, a JSON/JSONC
// language server. It speaks LSP over stdio, the same transport used by
// every major editor's client implementation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/kaptinlin/jsonls/internal/logging"
	"github.com/kaptinlin/jsonls/internal/lspserver"
)

// version is the server's reported version; set via -ldflags at release
// build time, defaulting to a development marker otherwise.
var version = "dev"

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "jsonls",
		Short:         "JSON/JSONC language server",
		Long:          `jsonls is a language server for JSON and JSONC, speaking LSP over stdio.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: $JSONLS_LOG or info)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logLevel)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	// No subcommand given means "serve", matching the reference
	// implementation's single-purpose binary.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(logLevel)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runServe(logLevel string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv("JSONLS_LOG")
	}
	logger := logging.New(level)
	defer logger.Sync()

	logger.Info("jsonls starting", zap.String("version", version))

	stream := jsonrpc2.NewStream(stdio{})
	conn := jsonrpc2.NewConn(stream)
	client := protocol.ClientDispatcher(conn, logger.Named("client"))

	server := lspserver.New(client, logger)
	ctx := protocol.WithClient(context.Background(), client)

	conn.Go(ctx, protocol.ServerHandler(server, jsonrpc2.MethodNotFoundHandler))

	<-conn.Done()
	return conn.Err()
}

// stdio adapts the process's standard streams to io.ReadWriteCloser, the
// shape jsonrpc2.NewStream expects.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return nil }
