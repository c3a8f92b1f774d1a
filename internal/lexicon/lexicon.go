package lexicon

import (
	"fmt"
	"log"
	"sync"

	"github.com/blevesearch/bleve/analysis"
	"github.com/blevesearch/bleve/analysis/lang/en"
)

type Source string

const (
	SourceFile     Source = "file"
	SourceSnowball Source = "snowball"
	SourceFallback Source = "fallback"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceFile, SourceSnowball, SourceFallback:
		return true
	default:
		return false
	}
}

type Config struct {
	Source        Source
	StopwordsPath string
}

// fallbackStopwords is used when the configured resource cannot be read.
var fallbackStopwords = []string{
	"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"a", "an", "as", "are", "was", "were", "been", "be", "have", "has", "had",
	"do", "does", "did", "will", "would", "could", "should", "may", "might", "must", "can",
	"this", "that", "these", "those", "i", "you", "he", "she", "it", "we", "they",
	"me", "him", "her", "us", "them", "my", "your", "his", "its", "our", "their", "is", "am",
}

// connectives are added on top of every source.
var connectives = []string{"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"}

type Lexicon struct {
	stopwords map[string]struct{}
	origin    Source
}

// Load reads the stopword list from the configured source. A source that
// cannot be read is tried once, then the embedded fallback list is used.
func Load(cfg Config, logger *log.Logger) *Lexicon {
	words, err := loadSource(cfg)
	origin := cfg.Source
	if err != nil {
		if logger != nil {
			logger.Printf("warning: %v; using embedded fallback stopwords", err)
		}
		words = fallbackStopwords
		origin = SourceFallback
	}

	return newLexicon(words, origin)
}

func loadSource(cfg Config) ([]string, error) {
	switch cfg.Source {
	case SourceFallback:
		return fallbackStopwords, nil
	case SourceSnowball:
		tokens := analysis.NewTokenMap()
		if err := tokens.LoadBytes(en.EnglishStopWords); err != nil {
			return nil, fmt.Errorf("failed to load snowball stopwords: %w", err)
		}
		return tokenMapWords(tokens), nil
	case SourceFile, "":
		if cfg.StopwordsPath == "" {
			return nil, fmt.Errorf("no stopwords path configured")
		}
		tokens := analysis.NewTokenMap()
		if err := tokens.LoadFile(cfg.StopwordsPath); err != nil {
			return nil, fmt.Errorf("failed to read stopwords from %s: %w", cfg.StopwordsPath, err)
		}
		if len(tokens) == 0 {
			return nil, fmt.Errorf("stopwords file %s is empty", cfg.StopwordsPath)
		}
		return tokenMapWords(tokens), nil
	default:
		return nil, fmt.Errorf("unknown lexicon source %q", cfg.Source)
	}
}

func tokenMapWords(tokens analysis.TokenMap) []string {
	words := make([]string, 0, len(tokens))
	for word := range tokens {
		words = append(words, word)
	}
	return words
}

func newLexicon(words []string, origin Source) *Lexicon {
	stopwords := make(map[string]struct{}, len(words)+len(connectives))
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
	for _, w := range connectives {
		stopwords[w] = struct{}{}
	}
	return &Lexicon{stopwords: stopwords, origin: origin}
}

func (l *Lexicon) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}

func (l *Lexicon) Size() int {
	return len(l.stopwords)
}

// Origin reports which source the words actually came from.
func (l *Lexicon) Origin() Source {
	return l.origin
}

var (
	instance *Lexicon
	once     sync.Once
)

// Init loads the process-wide lexicon. Only the first call has any effect.
func Init(cfg Config, logger *log.Logger) *Lexicon {
	once.Do(func() {
		instance = Load(cfg, logger)
	})
	return instance
}

// Default returns the process-wide lexicon, falling back to the embedded list
// if Init was never called.
func Default() *Lexicon {
	return Init(Config{Source: SourceFallback}, nil)
}
