package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelegend/cogito/pkg/types"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GetModel() string { return "fake-model" }

type fakeAugmenter struct {
	err error
}

func (f *fakeAugmenter) AugmentPrompt(_ context.Context, query, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Context:\n- fact\n\nQuestion: " + query, nil
}

func boolPtr(b bool) *bool { return &b }

func TestRespondReasoningPath(t *testing.T) {
	gen := &fakeGenerator{response: "**Step 1**: inspect the logs\n**Step 2**: restart the worker\n**Summary**: restart fixes it"}
	o := NewOrchestrator(gen, nil, 100)

	reply, chain, err := o.Respond(context.Background(), "How do I fix the stuck worker?", "s1", Options{})
	require.NoError(t, err)

	require.NotNil(t, chain)
	assert.Equal(t, types.StrategyStepByStep, chain.Strategy)
	assert.Equal(t, "How do I fix the stuck worker?", chain.Problem)
	assert.Len(t, chain.Steps, 2)
	assert.Equal(t, "restart fixes it", reply)

	// The composed prompt embeds the message in the strategy template.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "step-by-step")
	assert.Contains(t, gen.prompts[0], "How do I fix the stuck worker?")

	history := o.History()
	require.Len(t, history, 1)
	assert.Same(t, chain, history[0])
}

func TestRespondSkipPath(t *testing.T) {
	gen := &fakeGenerator{response: "hi there"}
	o := NewOrchestrator(gen, nil, 100)

	reply, chain, err := o.Respond(context.Background(), "hello", "s1", Options{})
	require.NoError(t, err)

	assert.Nil(t, chain)
	assert.Equal(t, "hi there", reply)
	assert.Empty(t, o.History())
	// The message went through unchanged, no template wrapping.
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "hello", gen.prompts[0])
}

func TestRespondForceReasoning(t *testing.T) {
	gen := &fakeGenerator{response: "a considered answer with plenty of thought behind it"}
	o := NewOrchestrator(gen, nil, 100)

	_, chain, err := o.Respond(context.Background(), "hello", "s1", Options{ForceReasoning: boolPtr(true)})
	require.NoError(t, err)
	assert.NotNil(t, chain)

	_, chain, err = o.Respond(context.Background(), "How do I fix this error?", "s1", Options{ForceReasoning: boolPtr(false)})
	require.NoError(t, err)
	assert.Nil(t, chain)
}

func TestRespondPinnedStrategy(t *testing.T) {
	gen := &fakeGenerator{response: "**Thought**: t\n**Action**: a\n**Observation**: o"}
	o := NewOrchestrator(gen, nil, 100)

	_, chain, err := o.Respond(context.Background(), "How do I do this?", "s1", Options{Strategy: types.StrategyReAct})
	require.NoError(t, err)

	require.NotNil(t, chain)
	assert.Equal(t, types.StrategyReAct, chain.Strategy)
	assert.Contains(t, gen.prompts[0], "ReAct")
}

func TestRespondTransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	o := NewOrchestrator(gen, nil, 100)

	_, _, err := o.Respond(context.Background(), "why is this failing", "s1", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, o.History())
}

func TestRespondEmptyMessage(t *testing.T) {
	o := NewOrchestrator(&fakeGenerator{}, nil, 100)

	_, _, err := o.Respond(context.Background(), "  ", "s1", Options{})
	assert.Error(t, err)
}

func TestRespondWithAugmenter(t *testing.T) {
	gen := &fakeGenerator{response: "answer"}
	o := NewOrchestrator(gen, &fakeAugmenter{}, 100)

	_, _, err := o.Respond(context.Background(), "hello", "s1", Options{})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Context:"))
	assert.Contains(t, gen.prompts[0], "Question: hello")
}

func TestRespondAugmenterFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{response: "answer"}
	o := NewOrchestrator(gen, &fakeAugmenter{err: errors.New("index offline")}, 100)

	reply, _, err := o.Respond(context.Background(), "hello", "s1", Options{})
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)
	assert.Equal(t, "hello", gen.prompts[0])
}

func TestHistoryCap(t *testing.T) {
	gen := &fakeGenerator{response: "**Step 1**: the only step taken here"}
	o := NewOrchestrator(gen, nil, 2)

	for _, msg := range []string{"why one", "why two", "why three"} {
		_, _, err := o.Respond(context.Background(), msg, "s1", Options{})
		require.NoError(t, err)
	}

	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, "why two", history[0].Problem)
	assert.Equal(t, "why three", history[1].Problem)
}

func TestExportAnalysis(t *testing.T) {
	gen := &fakeGenerator{response: "**Step 1**: inspect it because we must\n**Step 2**: then conclude"}
	o := NewOrchestrator(gen, nil, 100)

	_, _, err := o.Respond(context.Background(), "why does it break", "s1", Options{})
	require.NoError(t, err)
	_, _, err = o.Respond(context.Background(), "how do I install it", "s1", Options{})
	require.NoError(t, err)

	analysis := o.ExportAnalysis()

	assert.Equal(t, 2, analysis.TotalChains)
	assert.Equal(t, 1, analysis.StrategyCounts[types.StrategyChainOfThought])
	assert.Equal(t, 1, analysis.StrategyCounts[types.StrategyStepByStep])
	assert.Greater(t, analysis.AverageConfidence, 0.0)
	require.Len(t, analysis.Chains, 2)
	assert.Equal(t, "why does it break", analysis.Chains[0].Problem)
	assert.Equal(t, 2, analysis.Chains[0].StepCount)
}

func TestExportAnalysisEmpty(t *testing.T) {
	o := NewOrchestrator(&fakeGenerator{}, nil, 100)

	analysis := o.ExportAnalysis()
	assert.Zero(t, analysis.TotalChains)
	assert.Zero(t, analysis.AverageConfidence)
	assert.Empty(t, analysis.Chains)
}
