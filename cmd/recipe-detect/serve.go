package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the MCP server. Requests are read from stdin and responses written
to stdout, one JSON-RPC message per line. Logs go to stderr.

Configure it in your MCP client (e.g., Claude Desktop) as:
  "command": "recipe-detect", "args": ["serve", "--config", "/path/to/config.yaml"]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(a.cfg, a.log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.log.Info("recipe-detect MCP server starting",
				zap.String("version", Version),
				zap.String("commit", GitCommit),
			)
			srv := server.New(p,
				server.WithLogger(a.log),
				server.WithWorkers(a.cfg.Pipeline.Workers),
				server.WithVersion(Version),
			)
			return srv.Run(ctx)
		},
	}
}
