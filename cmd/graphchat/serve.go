package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphchat/internal/document"
	"graphchat/internal/graph"
	"graphchat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat server",
	Long: `Run the HTTP chat server. Serves a browser chat page at /, a JSON
API under /api, and health/status endpoints. Stops on SIGINT/SIGTERM.

Examples:
  graphchat serve
  graphchat serve --host 127.0.0.1 --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer store.Close(ctx)

		if host != "" {
			cfg.WebHost = host
		}
		if port != 0 {
			cfg.WebPort = port
		}

		health := store.HealthCheck(ctx)
		if !health.Reachable() {
			return fmt.Errorf("store unreachable: %s", health.Message)
		}
		if health.State == graph.StateUninitialized {
			printWarning("Schema missing. Run 'graphchat init' first.")
		}

		printStep("Serving at http://%s:%d", cfg.WebHost, cfg.WebPort)
		srv := server.New(store, buildOrchestrator(cfg, store), document.NewProcessor(store), cfg)
		return srv.Run()
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (overrides WEB_HOST)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides WEB_PORT)")
}
