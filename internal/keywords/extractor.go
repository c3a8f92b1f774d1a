package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/strrl/intake-intel/internal/lexicon"
	"github.com/strrl/intake-intel/internal/models"
)

var (
	nonLetters       = regexp.MustCompile(`[^a-zA-Z\s]`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+\s+|\n`)
)

type Config struct {
	TopK          int
	CombinedTopK  int
	MinTextLength int
	// SplitSentences ranks per sentence instead of treating the whole
	// cleaned text as one sentence.
	SplitSentences bool
}

func DefaultConfig() Config {
	return Config{TopK: 8, CombinedTopK: 10, MinTextLength: 10}
}

type Extractor struct {
	lexicon *lexicon.Lexicon
	config  Config
}

func NewExtractor(lex *lexicon.Lexicon, cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.CombinedTopK <= 0 {
		cfg.CombinedTopK = def.CombinedTopK
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = def.MinTextLength
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Extractor{lexicon: lex, config: cfg}
}

// document is text split into cleaned sentences. tokens keeps stopwords,
// terms drops them.
type document struct {
	tokens [][]string
	terms  [][]string
}

// Extract runs all four rankers over text and merges them. Text that is too
// short after cleaning yields empty lists.
func (e *Extractor) Extract(text string) models.KeywordResult {
	if len(Clean(text)) < e.config.MinTextLength {
		return models.EmptyKeywordResult()
	}

	doc := e.parse(text)
	k := e.config.TopK

	result := models.KeywordResult{
		RakeKeywords:    top(rake(doc, e.lexicon), k),
		YakeKeywords:    top(yake(doc), k),
		TFIDFKeywords:   top(tfidf(doc), k),
		KeyBERTKeywords: top(ngrams(doc), k),
	}

	var combined tally
	for _, list := range [][]string{result.RakeKeywords, result.YakeKeywords, result.TFIDFKeywords, result.KeyBERTKeywords} {
		for _, kw := range list {
			combined.add(kw, 1)
		}
	}
	result.CombinedKeywords = top(combined.descending(), e.config.CombinedTopK)

	return result
}

// Clean keeps ASCII letters and whitespace, lowercases, and collapses runs
// of whitespace into single spaces.
func Clean(text string) string {
	text = nonLetters.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func (e *Extractor) parse(text string) document {
	sentences := []string{text}
	if e.config.SplitSentences {
		sentences = SplitSentences(text)
	}

	var doc document
	for _, raw := range sentences {
		tokens := strings.Fields(Clean(raw))
		if len(tokens) == 0 {
			continue
		}

		terms := make([]string, 0, len(tokens))
		for _, token := range tokens {
			if !e.lexicon.IsStopword(token) {
				terms = append(terms, token)
			}
		}

		doc.tokens = append(doc.tokens, tokens)
		doc.terms = append(doc.terms, terms)
	}
	return doc
}

// SplitSentences breaks raw text at newlines and at terminators followed by
// whitespace and a capital letter, digit or quote. Decimals such as $4.50 and
// abbreviations followed by lowercase text ("sq. ft. for") stay intact.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if !strings.Contains(text[m[0]:m[1]], "\n") && m[1] < len(text) && !opensSentence(text[m[1]:]) {
			continue
		}
		sentences = append(sentences, text[start:m[0]])
		start = m[1]
	}

	return append(sentences, text[start:])
}

func opensSentence(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' || r == '('
}

// rake scores maximal runs of non-stopwords by their word count, summed over
// every occurrence.
func rake(doc document, lex *lexicon.Lexicon) []string {
	var scores tally

	for _, tokens := range doc.tokens {
		var run []string
		flush := func() {
			if len(run) == 0 {
				return
			}
			if phrase := strings.Join(run, " "); len(phrase) > 2 {
				scores.add(phrase, float64(len(run)))
			}
			run = nil
		}

		for _, token := range tokens {
			if lex.IsStopword(token) {
				flush()
				continue
			}
			run = append(run, token)
		}
		flush()
	}

	return scores.descending()
}

// yake favours repeated words that show up early in their sentences. Lower
// scores rank first.
func yake(doc document) []string {
	var freq tally
	positions := make(map[string]float64)

	for _, terms := range doc.terms {
		for i, term := range terms {
			freq.add(term, 1)
			positions[term] += float64(i)
		}
	}

	var scores tally
	for _, term := range freq.order {
		n := freq.scores[term]
		if n <= 1 {
			continue
		}
		meanPosition := positions[term] / n
		scores.add(term, n/(1+meanPosition))
	}

	return scores.ascending()
}

// tfidf treats every sentence as a document.
func tfidf(doc document) []string {
	var freq, docFreq tally
	total := 0.0

	for _, terms := range doc.terms {
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			freq.add(term, 1)
			total++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq.add(term, 1)
			}
		}
	}

	if total == 0 {
		return []string{}
	}

	sentences := float64(len(doc.terms))
	var scores tally
	for _, term := range freq.order {
		tf := freq.scores[term] / total
		idf := math.Log(sentences / (docFreq.scores[term] + 1))
		scores.add(term, tf*idf)
	}

	return scores.descending()
}

// ngrams ranks 1 to 3 word candidates within each sentence by how often
// they recur.
func ngrams(doc document) []string {
	var counts tally

	for _, terms := range doc.terms {
		for n := 1; n <= 3; n++ {
			for i := 0; i+n <= len(terms); i++ {
				counts.add(strings.Join(terms[i:i+n], " "), 1)
			}
		}
	}

	var kept tally
	for _, candidate := range counts.order {
		if counts.scores[candidate] > 1 && len(candidate) > 2 {
			kept.add(candidate, counts.scores[candidate])
		}
	}

	return kept.descending()
}

// tally accumulates scores and remembers first-seen order so that ties
// rank by first appearance.
type tally struct {
	order  []string
	scores map[string]float64
}

func (t *tally) add(term string, v float64) {
	if t.scores == nil {
		t.scores = make(map[string]float64)
	}
	if _, ok := t.scores[term]; !ok {
		t.order = append(t.order, term)
	}
	t.scores[term] += v
}

func (t *tally) descending() []string {
	return t.sorted(func(a, b float64) bool { return a > b })
}

func (t *tally) ascending() []string {
	return t.sorted(func(a, b float64) bool { return a < b })
}

func (t *tally) sorted(less func(a, b float64) bool) []string {
	terms := append([]string{}, t.order...)
	sort.SliceStable(terms, func(i, j int) bool {
		return less(t.scores[terms[i]], t.scores[terms[j]])
	})
	return terms
}

func top(terms []string, k int) []string {
	if len(terms) > k {
		terms = terms[:k]
	}
	if terms == nil {
		return []string{}
	}
	return terms
}
