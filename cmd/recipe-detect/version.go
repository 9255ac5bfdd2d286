package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ironsheep/recipe-detect-mcp/internal/ocr"
)

type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Tesseract string `json:"tesseract,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:   Version,
				BuildTime: BuildTime,
				GitCommit: GitCommit,
				GoVersion: runtime.Version(),
			}
			if v, err := ocr.Version(); err == nil {
				info.Tesseract = v
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(w, "recipe-detect %s\n", info.Version)
			fmt.Fprintf(w, "  Build time: %s\n", info.BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(w, "  Go: %s\n", info.GoVersion)
			if info.Tesseract != "" {
				fmt.Fprintf(w, "  Tesseract: %s\n", info.Tesseract)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output version info as JSON")
	return cmd
}
