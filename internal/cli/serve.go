package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/internal/server"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// serveCommand creates the serve command, which runs the render server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg     server.Config
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render server",
		Long: `Run the HTTP render server.

The server renders posted tree documents, keeps retained scenes that are
updated by keyed reconciliation, and exposes Prometheus metrics on /metrics.

With --data-dir, GET /v1/render?tree=<file> renders tree files below that
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := pipeline.DefaultOptions()
			if c.ConfigPath != "" {
				loaded, err := pipeline.LoadOptions(c.ConfigPath)
				if err != nil {
					return err
				}
				opts = loaded
			}
			cfg.Options = opts
			cfg.Logger = c.Logger

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv, err := server.New(runner, cfg)
			if err != nil {
				return err
			}
			printSuccess("Serving on %s", StyleHighlight.Render(cfg.Addr))
			if cfg.DataDir != "" {
				printDetail("Data directory: %s", cfg.DataDir)
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&cfg.DataDir, "data-dir", "", "directory of tree files served by GET /v1/render?tree=")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().IntVar(&cfg.MaxScenes, "max-scenes", server.DefaultMaxScenes, "maximum retained scenes (0 = unlimited)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
