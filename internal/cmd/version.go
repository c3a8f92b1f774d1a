package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/strrl/intake-intel/internal/cmd.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type buildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func (b buildInfo) markdown() string {
	return fmt.Sprintf("intake-intel version %s\n\n- commit: %s\n- built: %s\n", b.Version, b.GitCommit, b.BuildDate)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Report build metadata",
	Long: `Report build metadata of this binary in the selected --format so
scripts can parse it like any other result.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
		return newWriter(cmd).Write(info, info.markdown)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
