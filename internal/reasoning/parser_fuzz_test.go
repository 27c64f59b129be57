package reasoning

import (
	"testing"

	"github.com/codelegend/cogito/internal/textsig"
)

// FuzzParse checks the never-fails contract: any response text, however
// malformed, must produce a chain without panicking, with confidence in
// [0,1] and ordered step numbers.
func FuzzParse(f *testing.F) {
	// Seed corpus with interesting inputs
	f.Add("", "")
	f.Add("plain answer with no structure at all", "what is this")
	f.Add("**Thought**: think\n**Action**: act\n**Observation**: observe", "q")
	f.Add("**Thought**: only a thought, no action marker", "q")
	f.Add("**Action**: action without any thought", "q")
	f.Add("**Step 1**: one\n**Step 2**: two\n**Summary**: done", "q")
	f.Add("**Step 999999999999999999999**: overflow step number", "q")
	f.Add("**Step 1**:", "q")
	f.Add("**Step", "q")
	f.Add("**Thought**:**Action**:**Observation**:", "q")
	f.Add("**Thought**: a\n**Thought**: b\n**Action**: c", "q")
	f.Add("**Summary**:", "q")
	f.Add("**Summary**: tail\n**Conclusion**: other", "q")
	f.Add("1. first item\n2. second item\n3. third item", "q")
	f.Add("• bullet one is long enough to keep\n• bullet two is long enough to keep", "q")
	f.Add("paragraph one\n\nparagraph two\n\nparagraph three", "q")
	f.Add("émojis 🤖 and ünïcödé throughout the réspönse text here", "q")
	f.Add("**Step -1**: negative-looking step", "q")
	f.Add("**Step 1**: nested **Step 2**: inside", "q")
	f.Add("\n\n\n\n\n", "\n\n")
	f.Add("because therefore thus first second third finally", "why")

	analyzer := textsig.NewAnalyzer()

	f.Fuzz(func(t *testing.T, raw, problem string) {
		for _, p := range []*ResponseParser{NewResponseParser(nil), NewResponseParser(analyzer)} {
			chain := p.Parse(raw, problem)
			if chain == nil {
				t.Fatal("Parse returned nil chain")
			}
			if chain.ConfidenceScore < 0 || chain.ConfidenceScore > 1 {
				t.Errorf("confidence %v out of range for input %q", chain.ConfidenceScore, raw)
			}
			if chain.EnhancedConfidence != nil {
				if ec := *chain.EnhancedConfidence; ec < 0 || ec > 1 {
					t.Errorf("enhanced confidence %v out of range for input %q", ec, raw)
				}
			}
			for _, step := range chain.Steps {
				if step.StepNumber < 0 {
					t.Errorf("negative step number %d for input %q", step.StepNumber, raw)
				}
			}
		}
	})
}
