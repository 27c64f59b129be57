package reasoning

import (
	"fmt"

	"github.com/codelegend/cogito/pkg/types"
)

// PromptComposer renders a problem into a strategy-specific prompt. The
// section markers in each template are the same markers the response
// parser dispatches on, so a model that follows the template produces a
// parseable chain.
type PromptComposer struct{}

// NewPromptComposer creates a composer.
func NewPromptComposer() *PromptComposer {
	return &PromptComposer{}
}

// Compose returns the prompt for the given strategy. Unknown strategies
// fall back to the chain-of-thought template.
func (c *PromptComposer) Compose(strategy types.Strategy, problem string) string {
	switch strategy {
	case types.StrategyReAct:
		return fmt.Sprintf(reactTemplate, problem)
	case types.StrategyStepByStep:
		return fmt.Sprintf(stepByStepTemplate, problem)
	case types.StrategyProblemDecomposition:
		return fmt.Sprintf(decompositionTemplate, problem)
	case types.StrategyReflection:
		return fmt.Sprintf(reflectionTemplate, problem)
	default:
		return fmt.Sprintf(chainOfThoughtTemplate, problem)
	}
}

const chainOfThoughtTemplate = `Think through this problem step by step using clear reasoning:

Problem: %s

Please follow this structure:
1. **Understanding**: What is the core problem or question?
2. **Analysis**: Break down the key components and requirements
3. **Reasoning**: Work through the logic step by step
4. **Solution**: Provide the final answer or recommendation

Let me think through this carefully:`

const reactTemplate = `Use the ReAct format to solve this problem systematically:

Problem: %s

Follow this format:
**Thought**: [Your reasoning about what to do next]
**Action**: [What action or step to take]
**Observation**: [What you learned or discovered]

Continue this cycle until you reach a solution.

Let me start:`

const stepByStepTemplate = `Provide a detailed step-by-step solution:

Problem: %s

Break this down into clear, actionable steps:

**Step 1**: [First action/consideration]
**Step 2**: [Second action/consideration]
**Step 3**: [Third action/consideration]
[Continue as needed...]

**Summary**: [Final conclusion/result]

Let me work through this systematically:`

const decompositionTemplate = `Decompose this complex problem into manageable parts:

Problem: %s

**Problem Decomposition**:
1. **Core Components**: What are the main parts of this problem?
2. **Dependencies**: How do these parts relate to each other?
3. **Priorities**: What should be tackled first?
4. **Sub-problems**: Break each component into smaller tasks
5. **Integration**: How do we combine the solutions?

Let me analyze this systematically:`

const reflectionTemplate = `Use reflection to thoroughly analyze this problem:

Problem: %s

**Reflection Process**:
1. **Current Situation**: What is happening now?
2. **Root Cause Analysis**: Why is this happening?
3. **Alternative Perspectives**: What other ways can we view this?
4. **Potential Solutions**: What options do we have?
5. **Evaluation**: What are the pros and cons of each option?
6. **Decision**: What is the best approach and why?

Let me reflect on this carefully:`
