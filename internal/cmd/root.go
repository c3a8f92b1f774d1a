package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/strrl/intake-intel/internal/config"
	"github.com/strrl/intake-intel/internal/output"
)

var (
	cfgFile       string
	outputFormat  string
	lexiconSource string
	stopwordsPath string
	verbose       bool
)

var (
	settings *config.Config
	logger   *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intake-intel",
	Short: "Offline text analytics for leads and service requests",
	Long: `intake-intel analyzes batches of submitted leads and service requests.
It flags stale entries, summarizes resource usage, labels each entry,
groups near-duplicates, detects anomalies and extracts keywords from text.
Everything runs locally; results are written to stdout.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. Failures are reported as a JSON error
// object on stdout.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.WriteError(os.Stdout, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./intake-intel.yaml or ~/.config/intake-intel/)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "Output format: json, yaml or markdown")
	rootCmd.PersistentFlags().StringVar(&lexiconSource, "lexicon-source", "", "Stopword source: file, snowball or fallback")
	rootCmd.PersistentFlags().StringVar(&stopwordsPath, "stopwords", "", "Stopword list to use with --lexicon-source=file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	settings = cfg

	runID := uuid.NewString()[:8]
	logger = log.New(cmd.ErrOrStderr(), fmt.Sprintf("[intake-intel %s] ", runID), log.LstdFlags)

	debugf("using %s output", settings.Output.Format)
	return nil
}

func debugf(format string, args ...any) {
	if settings == nil || !settings.Log.Verbose || logger == nil {
		return
	}
	logger.Printf(format, args...)
}

func newWriter(cmd *cobra.Command) *output.Writer {
	return output.NewWriter(cmd.OutOrStdout(), output.Format(settings.Output.Format))
}
