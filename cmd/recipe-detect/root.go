package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/config"
	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
)

// app carries what PersistentPreRunE loads for the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "recipe-detect",
		Short: "Recognize food ingredients in photos",
		Long: `recipe-detect - ingredient recognition for recipe assistants.

Measures image quality, brightens dark or flat photos with CLAHE on the
lightness channel, runs the configured detector and reports one entry per
ingredient, ordered by confidence.

Commands:
  serve    - Run the MCP server over stdin/stdout
  detect   - Recognize ingredients in one image and print JSON
  metrics  - Print quality metrics and the enhancement decision
  version  - Print version information

Configuration is read from --config (YAML or TOML) and RECIPE_DETECT_*
environment variables, e.g. RECIPE_DETECT_DETECTOR_CONFIDENCE=0.5.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
			if err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a config file (YAML or TOML)")

	root.AddCommand(
		newServeCmd(a),
		newDetectCmd(a),
		newMetricsCmd(a),
		newVersionCmd(),
	)
	return root
}
