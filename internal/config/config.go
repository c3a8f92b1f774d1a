package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/strrl/intake-intel/internal/lexicon"
)

const envPrefix = "INTAKE_INTEL"

// Config holds every tunable of both pipelines.
type Config struct {
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Anomaly  AnomalyConfig  `mapstructure:"anomaly"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
	Lexicon  LexiconConfig  `mapstructure:"lexicon"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
}

type CleanupConfig struct {
	ThresholdDays int `mapstructure:"threshold_days"`
}

type DedupConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	// ReportExactSimilarity replaces the fixed 0.7 score with the computed Jaccard value.
	ReportExactSimilarity bool `mapstructure:"report_exact_similarity"`
}

type AnomalyConfig struct {
	RapidGapSeconds      int `mapstructure:"rapid_gap_seconds"`
	RapidMinTimestamps   int `mapstructure:"rapid_min_timestamps"`
	RapidMinCount        int `mapstructure:"rapid_min_count"`
	ExcessiveAccessLimit int `mapstructure:"excessive_access_limit"`
}

type KeywordsConfig struct {
	TopK           int  `mapstructure:"top_k"`
	CombinedTopK   int  `mapstructure:"combined_top_k"`
	MinTextLength  int  `mapstructure:"min_text_length"`
	SplitSentences bool `mapstructure:"split_sentences"`
}

type LexiconConfig struct {
	Source        string `mapstructure:"source"`
	StopwordsPath string `mapstructure:"stopwords_path"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

func Default() Config {
	return Config{
		Cleanup: CleanupConfig{ThresholdDays: 30},
		Dedup:   DedupConfig{Threshold: 0.6},
		Anomaly: AnomalyConfig{
			RapidGapSeconds:      60,
			RapidMinTimestamps:   6,
			RapidMinCount:        4,
			ExcessiveAccessLimit: 100,
		},
		Keywords: KeywordsConfig{TopK: 8, CombinedTopK: 10, MinTextLength: 10},
		Lexicon: LexiconConfig{
			Source:        string(lexicon.SourceFile),
			StopwordsPath: defaultStopwordsPath(),
		},
		Output: OutputConfig{Format: "json"},
	}
}

func defaultStopwordsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "nltk_data", "corpora", "stopwords", "english")
}

// flagKeys maps persistent CLI flags onto config keys.
var flagKeys = map[string]string{
	"format":          "output.format",
	"lexicon-source":  "lexicon.source",
	"stopwords":       "lexicon.stopwords_path",
	"verbose":         "log.verbose",
	"threshold-days":  "cleanup.threshold_days",
	"exact-scores":    "dedup.report_exact_similarity",
	"top-k":           "keywords.top_k",
	"split-sentences": "keywords.split_sentences",
}

// Load resolves configuration from defaults, an optional config file, a .env
// file, INTAKE_INTEL_* environment variables and finally the given flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("intake-intel")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "intake-intel"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("cleanup.threshold_days", d.Cleanup.ThresholdDays)
	v.SetDefault("dedup.threshold", d.Dedup.Threshold)
	v.SetDefault("dedup.report_exact_similarity", d.Dedup.ReportExactSimilarity)
	v.SetDefault("anomaly.rapid_gap_seconds", d.Anomaly.RapidGapSeconds)
	v.SetDefault("anomaly.rapid_min_timestamps", d.Anomaly.RapidMinTimestamps)
	v.SetDefault("anomaly.rapid_min_count", d.Anomaly.RapidMinCount)
	v.SetDefault("anomaly.excessive_access_limit", d.Anomaly.ExcessiveAccessLimit)
	v.SetDefault("keywords.top_k", d.Keywords.TopK)
	v.SetDefault("keywords.combined_top_k", d.Keywords.CombinedTopK)
	v.SetDefault("keywords.min_text_length", d.Keywords.MinTextLength)
	v.SetDefault("keywords.split_sentences", d.Keywords.SplitSentences)
	v.SetDefault("lexicon.source", d.Lexicon.Source)
	v.SetDefault("lexicon.stopwords_path", d.Lexicon.StopwordsPath)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("log.verbose", d.Log.Verbose)
}

// Normalize replaces unset or non-positive values with defaults.
func (c Config) Normalize() Config {
	d := Default()
	if c.Cleanup.ThresholdDays <= 0 {
		c.Cleanup.ThresholdDays = d.Cleanup.ThresholdDays
	}
	if c.Dedup.Threshold <= 0 {
		c.Dedup.Threshold = d.Dedup.Threshold
	}
	if c.Anomaly.RapidGapSeconds <= 0 {
		c.Anomaly.RapidGapSeconds = d.Anomaly.RapidGapSeconds
	}
	if c.Anomaly.RapidMinTimestamps <= 0 {
		c.Anomaly.RapidMinTimestamps = d.Anomaly.RapidMinTimestamps
	}
	if c.Anomaly.RapidMinCount <= 0 {
		c.Anomaly.RapidMinCount = d.Anomaly.RapidMinCount
	}
	if c.Anomaly.ExcessiveAccessLimit <= 0 {
		c.Anomaly.ExcessiveAccessLimit = d.Anomaly.ExcessiveAccessLimit
	}
	if c.Keywords.TopK <= 0 {
		c.Keywords.TopK = d.Keywords.TopK
	}
	if c.Keywords.CombinedTopK <= 0 {
		c.Keywords.CombinedTopK = d.Keywords.CombinedTopK
	}
	if c.Keywords.MinTextLength <= 0 {
		c.Keywords.MinTextLength = d.Keywords.MinTextLength
	}
	c.Lexicon.Source = strings.ToLower(strings.TrimSpace(c.Lexicon.Source))
	if c.Lexicon.Source == "" {
		c.Lexicon.Source = d.Lexicon.Source
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	return c
}

func (c Config) Validate() error {
	if c.Dedup.Threshold > 1 {
		return fmt.Errorf("dedup.threshold must be within (0, 1], got %v", c.Dedup.Threshold)
	}
	if !lexicon.Source(c.Lexicon.Source).IsValid() {
		return fmt.Errorf("lexicon.source must be one of file, snowball, fallback, got %q", c.Lexicon.Source)
	}
	switch c.Output.Format {
	case "json", "yaml", "markdown":
	default:
		return fmt.Errorf("output.format must be one of json, yaml, markdown, got %q", c.Output.Format)
	}
	return nil
}

func (c Config) LexiconConfig() lexicon.Config {
	return lexicon.Config{
		Source:        lexicon.Source(c.Lexicon.Source),
		StopwordsPath: c.Lexicon.StopwordsPath,
	}
}
