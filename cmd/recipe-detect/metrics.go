package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ironsheep/recipe-detect-mcp/internal/imaging"
)

type metricsOutput struct {
	Path    string                 `json:"path"`
	Width   int                    `json:"width"`
	Height  int                    `json:"height"`
	Metrics imaging.QualityMetrics `json:"metrics"`
	Enhance bool                   `json:"enhance"`
}

func newMetricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <image>...",
		Short: "Print quality metrics and the enhancement decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := a.cfg.EnhancePolicy()
			cache := imaging.NewImageCache()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			for _, path := range args {
				img, err := cache.Load(path)
				if err != nil {
					return err
				}
				m := imaging.Analyze(img)
				b := img.Bounds()
				if err := enc.Encode(metricsOutput{
					Path:    path,
					Width:   b.Dx(),
					Height:  b.Dy(),
					Metrics: m,
					Enhance: policy.ShouldEnhance(m),
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
