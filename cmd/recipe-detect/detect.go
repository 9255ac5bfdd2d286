package main

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/imaging"
	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
)

func newDetectCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Recognize ingredients in one image and print JSON",
		Example: `  recipe-detect detect fridge.jpg
  recipe-detect detect --out result.json --config replay.yaml pantry.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(a.cfg, a.log)
			if err != nil {
				return err
			}

			img, err := imaging.NewImageCache().Load(args[0])
			if err != nil {
				return err
			}

			resp, timings, err := p.RunWithTimings(cmd.Context(), img)
			if err != nil {
				return err
			}
			a.log.Info("detection finished",
				zap.String(logging.FieldPath, args[0]),
				zap.String(logging.FieldRequestID, resp.RequestID),
				zap.Int(logging.FieldCount, len(resp.Detections)),
				zap.Int64(logging.FieldDurationMS, timings.Total.Milliseconds()),
			)

			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to encode result")
			}
			data = append(data, '\n')

			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return errors.Wrapf(err, "failed to write %s", out)
				}
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the JSON result to this file instead of stdout")
	return cmd
}
