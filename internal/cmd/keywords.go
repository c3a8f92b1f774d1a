package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strrl/intake-intel/internal/keywords"
	"github.com/strrl/intake-intel/internal/lexicon"
)

var (
	keywordsFile  string
	keywordsTopK  int
	keywordsSplit bool
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [text]",
	Short: "Extract keywords from free text",
	Long: `Rank keywords in free text with four lightweight methods (RAKE, YAKE,
TF-IDF and n-gram frequency) and merge them into a combined list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeywords,
}

func init() {
	rootCmd.AddCommand(keywordsCmd)

	keywordsCmd.Flags().StringVar(&keywordsFile, "file", "", "Read text from a file instead of the argument")
	keywordsCmd.Flags().IntVar(&keywordsTopK, "top-k", 8, "Keywords kept per method")
	keywordsCmd.Flags().BoolVar(&keywordsSplit, "split-sentences", false, "Rank per sentence instead of over the whole text")
}

func runKeywords(cmd *cobra.Command, args []string) error {
	text, err := readText(args)
	if err != nil {
		return err
	}

	lex := lexicon.Init(settings.LexiconConfig(), logger)
	debugf("loaded %d stopwords from %s", lex.Size(), lex.Origin())

	extractor := keywords.NewExtractor(lex, keywords.Config{
		TopK:           settings.Keywords.TopK,
		CombinedTopK:   settings.Keywords.CombinedTopK,
		MinTextLength:  settings.Keywords.MinTextLength,
		SplitSentences: settings.Keywords.SplitSentences,
	})

	return newWriter(cmd).WriteKeywords(extractor.Extract(text))
}

func readText(args []string) (string, error) {
	switch {
	case len(args) == 1 && keywordsFile != "":
		return "", errors.New("pass either a text argument or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case keywordsFile != "":
		data, err := os.ReadFile(keywordsFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", keywordsFile, err)
		}
		return string(data), nil
	default:
		return "", errors.New("No text provided")
	}
}
