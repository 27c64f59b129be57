// Package textsig extracts lightweight signals from free text: question
// type, key terms, technical vocabulary, sentiment, complexity, and
// readability. The reasoning layer uses these signals to pick a strategy
// and to refine confidence scores.
//
// All analysis is lexicon-based and deterministic. Analyze never fails;
// on degenerate input it returns a neutral default analysis.
package textsig

import (
	"regexp"
	"sort"
	"strings"
)

// Complexity buckets text into four levels based on a weighted score.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// Analysis holds the signals extracted from a piece of text.
type Analysis struct {
	Text                string     // Original input
	WordCount           int        // Total word tokens
	SentenceCount       int        // Sentence count (minimum 1 for non-empty text)
	QuestionType        string     // procedural, explanatory, definitional, troubleshooting, design, comparative, general
	KeyTerms            []string   // Frequency-ranked content words, stopword-filtered
	TechnicalTerms      []string   // Words matching the technical lexicon, in order of appearance
	ReasoningIndicators []string   // Logical connectives present in the text
	Sentiment           float64    // [-1, 1]; 0 is neutral
	Complexity          Complexity // Weighted complexity bucket
	Readability         float64    // [0, 1]; higher is easier to read
}

// Analyzer extracts signals from text. The zero value is not usable; call
// NewAnalyzer.
type Analyzer struct {
	technicalTerms      map[string]bool
	reasoningIndicators []string
	stopWords           map[string]bool
	positiveWords       map[string]bool
	negativeWords       map[string]bool
}

// NewAnalyzer creates an Analyzer with the built-in lexicons.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		technicalTerms:      toSet(technicalLexicon),
		reasoningIndicators: reasoningLexicon,
		stopWords:           toSet(stopWordLexicon),
		positiveWords:       toSet(positiveLexicon),
		negativeWords:       toSet(negativeLexicon),
	}
}

// technicalLexicon is the fixed vocabulary of software-engineering terms
// used for technical density and confidence boosts.
var technicalLexicon = []string{
	"programming", "algorithm", "function", "variable", "class", "method",
	"database", "api", "framework", "library", "module", "package",
	"debugging", "testing", "deployment", "architecture", "design",
	"optimization", "performance", "scalability", "security",
}

// reasoningLexicon lists logical connectives and sequence markers. Multi-word
// entries are matched as substrings of the lowercased text.
var reasoningLexicon = []string{
	"because", "therefore", "thus", "consequently", "as a result",
	"this means", "we can conclude", "it follows that", "given that",
	"furthermore", "moreover", "however", "nevertheless", "alternatively",
	"first", "second", "third", "next", "then", "finally", "in conclusion",
}

// stopWordLexicon is a compact English stopword list; enough to filter key
// terms without an external corpus.
var stopWordLexicon = []string{
	"a", "an", "the", "and", "or", "but", "if", "of", "at", "by", "for",
	"with", "about", "against", "between", "into", "through", "during",
	"before", "after", "above", "below", "to", "from", "up", "down", "in",
	"out", "on", "off", "over", "under", "again", "further", "once", "here",
	"there", "when", "where", "why", "how", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "can", "will",
	"just", "should", "now", "i", "me", "my", "we", "our", "you", "your",
	"he", "him", "his", "she", "her", "it", "its", "they", "them", "their",
	"what", "which", "who", "whom", "this", "that", "these", "those", "am",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "would", "could", "ought",
}

var positiveLexicon = []string{
	"good", "great", "excellent", "correct", "works", "working", "success",
	"successful", "clean", "fast", "efficient", "reliable", "simple",
	"clear", "elegant", "improved", "better", "best", "solved", "fixed",
}

var negativeLexicon = []string{
	"bad", "wrong", "error", "errors", "fail", "fails", "failed", "failure",
	"broken", "slow", "crash", "crashes", "bug", "bugs", "problem",
	"problems", "issue", "issues", "worse", "worst", "confusing",
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z']*`)

// sentencePattern splits on terminal punctuation runs.
var sentencePattern = regexp.MustCompile(`[.!?]+`)

// Analyze extracts all signals from text. It never returns an error; empty
// or whitespace-only input yields a neutral default analysis.
func (a *Analyzer) Analyze(text string) Analysis {
	words := tokenize(text)
	sentenceCount := countSentences(text)

	if len(words) == 0 {
		return Analysis{
			Text:         text,
			QuestionType: "general",
			Sentiment:    0,
			Complexity:   ComplexitySimple,
			Readability:  0.5,
		}
	}

	technical := a.findTechnicalTerms(words)
	indicators := a.findReasoningIndicators(text)

	return Analysis{
		Text:                text,
		WordCount:           len(words),
		SentenceCount:       sentenceCount,
		QuestionType:        a.DetectQuestionType(text),
		KeyTerms:            a.KeyTerms(text, 20),
		TechnicalTerms:      technical,
		ReasoningIndicators: indicators,
		Sentiment:           a.sentiment(words),
		Complexity:          assessComplexity(words, sentenceCount, len(technical)),
		Readability:         readability(len(words), sentenceCount),
	}
}

// DetectQuestionType classifies a question into one of seven categories
// using keyword tables; the first matching table wins.
func (a *Analyzer) DetectQuestionType(text string) string {
	lower := strings.ToLower(text)

	tables := []struct {
		qtype    string
		keywords []string
	}{
		{"procedural", []string{"how", "tutorial", "guide", "steps"}},
		{"explanatory", []string{"why", "explain", "reason"}},
		{"definitional", []string{"what", "define", "describe"}},
		{"troubleshooting", []string{"debug", "fix", "error", "problem"}},
		{"design", []string{"design", "architecture", "build"}},
		{"comparative", []string{"compare", "difference", "versus"}},
	}

	for _, table := range tables {
		for _, kw := range table.keywords {
			if strings.Contains(lower, kw) {
				return table.qtype
			}
		}
	}
	return "general"
}

// KeyTerms returns the topN most frequent content words: lowercased,
// stopword-filtered, longer than 3 characters. Ties break alphabetically
// so results are deterministic.
func (a *Analyzer) KeyTerms(text string, topN int) []string {
	words := tokenize(text)

	freq := make(map[string]int)
	for _, w := range words {
		if len(w) > 3 && !a.stopWords[w] {
			freq[w]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(freq))
	for w := range freq {
		terms = append(terms, w)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if topN > 0 && len(terms) > topN {
		terms = terms[:topN]
	}
	return terms
}

// EnhanceConfidence refines a base confidence score using text signals:
// a boost of up to 0.2 for reasoning connectives, up to 0.1 for technical
// vocabulary, and a 0.9 multiplier when sentences are very short (<5 words)
// or very long (>30 words). The result is clamped to [0, 1].
func (a *Analyzer) EnhanceConfidence(text string, base float64) float64 {
	words := tokenize(text)
	sentenceCount := countSentences(text)
	if len(words) == 0 {
		return clamp01(base)
	}

	reasoningCount := len(a.findReasoningIndicators(text))
	technicalCount := 0
	for _, w := range words {
		if a.technicalTerms[w] {
			technicalCount++
		}
	}

	reasoningBoost := minFloat(float64(reasoningCount)/3.0, 0.2)
	technicalBoost := minFloat(float64(technicalCount)/5.0, 0.1)

	structureFactor := 1.0
	avgSentenceLen := float64(len(words)) / float64(maxInt(sentenceCount, 1))
	if avgSentenceLen < 5 || avgSentenceLen > 30 {
		structureFactor = 0.9
	}

	return clamp01((base + reasoningBoost + technicalBoost) * structureFactor)
}

func (a *Analyzer) findTechnicalTerms(words []string) []string {
	var found []string
	for _, w := range words {
		if a.technicalTerms[w] {
			found = append(found, w)
		}
	}
	return found
}

func (a *Analyzer) findReasoningIndicators(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, ind := range a.reasoningIndicators {
		if containsWordOrPhrase(lower, ind) {
			found = append(found, ind)
		}
	}
	return found
}

// sentiment scores words against the positive/negative lexicons and returns
// (positive - negative) / matched, clamped to [-1, 1].
func (a *Analyzer) sentiment(words []string) float64 {
	var pos, neg int
	for _, w := range words {
		if a.positiveWords[w] {
			pos++
		}
		if a.negativeWords[w] {
			neg++
		}
	}
	matched := pos + neg
	if matched == 0 {
		return 0
	}
	score := float64(pos-neg) / float64(matched)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// assessComplexity blends three weighted factors: average sentence length
// (0.4, normalized against 20 words), lexical diversity (0.3), and
// technical density (0.3). Buckets at 0.3 / 0.6 / 0.9.
func assessComplexity(words []string, sentenceCount, technicalCount int) Complexity {
	if len(words) == 0 {
		return ComplexitySimple
	}

	avgSentenceLen := float64(len(words)) / float64(maxInt(sentenceCount, 1))

	unique := make(map[string]bool, len(words))
	for _, w := range words {
		unique[w] = true
	}
	diversity := float64(len(unique)) / float64(len(words))

	technicalRatio := float64(technicalCount) / float64(len(words))

	score := (avgSentenceLen/20.0)*0.4 + diversity*0.3 + technicalRatio*10*0.3

	switch {
	case score < 0.3:
		return ComplexitySimple
	case score < 0.6:
		return ComplexityModerate
	case score < 0.9:
		return ComplexityComplex
	default:
		return ComplexityVeryComplex
	}
}

// readability is a simplified inverse-sentence-length score in [0, 1].
func readability(wordCount, sentenceCount int) float64 {
	if wordCount == 0 || sentenceCount == 0 {
		return 0.5
	}
	avg := float64(wordCount) / float64(sentenceCount)
	return clamp01(1.0 / (1.0 + avg/15.0))
}

// tokenize splits text into lowercased word tokens.
func tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	return matches
}

// countSentences counts terminal-punctuation runs, treating any non-empty
// text as at least one sentence.
func countSentences(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	n := len(sentencePattern.FindAllString(text, -1))
	if n == 0 {
		return 1
	}
	return n
}

// containsWordOrPhrase reports whether the phrase appears in lower. Single
// words must match on word boundaries so "then" does not match "authentic".
func containsWordOrPhrase(lower, phrase string) bool {
	if strings.Contains(phrase, " ") {
		return strings.Contains(lower, phrase)
	}
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isLetter(lower[start-1])
		afterOK := end == len(lower) || !isLetter(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
