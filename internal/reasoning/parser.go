package reasoning

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/codelegend/cogito/internal/textsig"
	"github.com/codelegend/cogito/pkg/types"
)

const (
	thoughtMarker     = "**Thought**:"
	actionMarker      = "**Action**:"
	observationMarker = "**Observation**:"
)

// finalAnswerMarkers are tried in order; the text after the first match is
// the final answer.
var finalAnswerMarkers = []string{
	"**Summary**:",
	"**Conclusion**:",
	"**Final Answer**:",
	"**Result**:",
}

var (
	stepHeaderPattern = regexp.MustCompile(`\*\*Step\s+(\d+)\*\*:`)
	sectionSplitter   = regexp.MustCompile(`\d+\.|•|\*\*|\n\n`)
)

// qualityIndicators and structureIndicators feed the confidence heuristic.
var (
	qualityIndicators = []string{
		"because", "therefore", "thus", "consequently", "as a result",
		"this means", "we can conclude", "it follows that", "given that",
	}
	structureIndicators = []string{"first", "second", "third", "next", "then", "finally"}
)

// ResponseParser turns raw model output into a ReasoningChain. Parse never
// fails: any input, including garbage, yields a chain (possibly with zero
// steps and floor confidence).
type ResponseParser struct {
	analyzer *textsig.Analyzer
}

// NewResponseParser creates a parser. analyzer may be nil, which disables
// the text-signal enhancement fields.
func NewResponseParser(analyzer *textsig.Analyzer) *ResponseParser {
	return &ResponseParser{analyzer: analyzer}
}

// Parse extracts reasoning steps, the final answer, and a confidence score
// from a raw response. The grammar is chosen by marker sniffing: ReAct
// triplets, numbered steps, then a generic section splitter.
func (p *ResponseParser) Parse(raw, problem string) *types.ReasoningChain {
	var steps []types.ReasoningStep
	switch {
	case strings.Contains(raw, thoughtMarker) && strings.Contains(raw, actionMarker):
		steps = parseReAct(raw)
	case strings.Contains(raw, "**Step"):
		steps = parseSteps(raw)
	default:
		steps = parseGeneric(raw)
	}

	chain := &types.ReasoningChain{
		Problem:         problem,
		Strategy:        types.StrategyChainOfThought,
		Steps:           steps,
		FinalAnswer:     extractFinalAnswer(raw),
		ConfidenceScore: calculateConfidence(steps, raw),
		CreatedAt:       time.Now().UTC(),
	}

	if p.analyzer != nil {
		enhanced := p.analyzer.EnhanceConfidence(raw, chain.ConfidenceScore)
		chain.EnhancedConfidence = &enhanced
		chain.KeyConcepts = unionTerms(
			p.analyzer.KeyTerms(problem, 5),
			p.analyzer.KeyTerms(raw, 5),
		)
		if strings.TrimSpace(problem) != "" {
			chain.QuestionType = p.analyzer.DetectQuestionType(problem)
		}
	}

	return chain
}

// parseReAct extracts Thought/Action/Observation triplets. Action and
// Observation are optional within each triplet.
func parseReAct(raw string) []types.ReasoningStep {
	segments := strings.Split(raw, thoughtMarker)
	if len(segments) < 2 {
		return nil
	}

	now := time.Now().UTC()
	var steps []types.ReasoningStep
	for _, segment := range segments[1:] {
		thought := segment
		var action, observation *string

		if idx := strings.Index(thought, actionMarker); idx >= 0 {
			rest := thought[idx+len(actionMarker):]
			thought = thought[:idx]
			if obsIdx := strings.Index(rest, observationMarker); obsIdx >= 0 {
				obs := strings.TrimSpace(rest[obsIdx+len(observationMarker):])
				observation = &obs
				rest = rest[:obsIdx]
			}
			act := strings.TrimSpace(rest)
			action = &act
		}

		steps = append(steps, types.ReasoningStep{
			StepNumber:  len(steps) + 1,
			Thought:     strings.TrimSpace(thought),
			Action:      action,
			Observation: observation,
			Confidence:  0.8,
			Timestamp:   now,
		})
	}
	return steps
}

// parseSteps extracts `**Step N**:` sections. Content runs to the next
// step header or the Summary marker.
func parseSteps(raw string) []types.ReasoningStep {
	headers := stepHeaderPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(headers) == 0 {
		return nil
	}

	now := time.Now().UTC()
	steps := make([]types.ReasoningStep, 0, len(headers))
	for i, header := range headers {
		num, err := strconv.Atoi(raw[header[2]:header[3]])
		if err != nil {
			continue
		}

		end := len(raw)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		content := raw[header[1]:end]
		if idx := strings.Index(content, "**Summary**:"); idx >= 0 {
			content = content[:idx]
		}

		steps = append(steps, types.ReasoningStep{
			StepNumber: num,
			Thought:    strings.TrimSpace(content),
			Confidence: 0.7,
			Timestamp:  now,
		})
	}
	return steps
}

// parseGeneric splits on list markers, bold markers, and blank lines,
// keeping fragments long enough to be substantive.
func parseGeneric(raw string) []types.ReasoningStep {
	now := time.Now().UTC()
	var steps []types.ReasoningStep
	for _, section := range sectionSplitter.Split(raw, -1) {
		section = strings.TrimSpace(section)
		if len(section) <= 20 {
			continue
		}
		steps = append(steps, types.ReasoningStep{
			StepNumber: len(steps) + 1,
			Thought:    section,
			Confidence: 0.6,
			Timestamp:  now,
		})
	}
	return steps
}

// extractFinalAnswer looks for an explicit answer marker, then falls back
// to the last substantive paragraph, then the tail of the response.
func extractFinalAnswer(raw string) string {
	for _, marker := range finalAnswerMarkers {
		if idx := strings.Index(raw, marker); idx >= 0 {
			return strings.TrimSpace(raw[idx+len(marker):])
		}
	}

	var last string
	for _, para := range strings.Split(raw, "\n\n") {
		if p := strings.TrimSpace(para); len(p) > 50 {
			last = p
		}
	}
	if last != "" {
		return last
	}

	runes := []rune(raw)
	if len(runes) > 200 {
		runes = runes[len(runes)-200:]
	}
	return string(runes)
}

// calculateConfidence scores reasoning quality from step count, causal
// connectives, and structural markers. Responses with no parseable steps
// floor at 0.3.
func calculateConfidence(steps []types.ReasoningStep, raw string) float64 {
	if len(steps) == 0 {
		return 0.3
	}

	lower := strings.ToLower(raw)

	stepScore := minF(float64(len(steps))/5.0, 1.0) * 0.4

	quality := 0
	for _, ind := range qualityIndicators {
		if strings.Contains(lower, ind) {
			quality++
		}
	}
	qualityScore := minF(float64(quality)/3.0, 1.0) * 0.3

	structural := 0
	for _, ind := range structureIndicators {
		if strings.Contains(lower, ind) {
			structural++
		}
	}
	structureScore := minF(float64(structural)/4.0, 1.0) * 0.3

	return stepScore + qualityScore + structureScore
}

func unionTerms(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, t := range append(a, b...) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
