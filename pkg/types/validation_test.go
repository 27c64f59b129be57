package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStrategy(t *testing.T) {
	for _, s := range ValidStrategies {
		assert.True(t, IsValidStrategy(s), "expected %s to be valid", s)
	}

	assert.False(t, IsValidStrategy(Strategy("tree_of_thought")))
	assert.False(t, IsValidStrategy(Strategy("")))
	assert.False(t, IsValidStrategy(Strategy("Chain_Of_Thought")))
}

func TestIsValidEntityType(t *testing.T) {
	assert.Len(t, ValidEntityTypes, 15)

	for _, et := range ValidEntityTypes {
		assert.True(t, IsValidEntityType(et), "expected %s to be valid", et)
	}

	assert.False(t, IsValidEntityType("spaceship"))
	assert.False(t, IsValidEntityType(""))
	assert.False(t, IsValidEntityType("Technology"))
}

func TestIsValidRelationType(t *testing.T) {
	assert.Len(t, ValidRelationTypes, 10)

	for _, rt := range ValidRelationTypes {
		assert.True(t, IsValidRelationType(rt), "expected %s to be valid", rt)
	}

	assert.False(t, IsValidRelationType("married_to"))
	assert.False(t, IsValidRelationType(""))
}

func TestIsValidDocType(t *testing.T) {
	for _, dt := range ValidDocTypes {
		assert.True(t, IsValidDocType(dt), "expected %s to be valid", dt)
	}

	assert.False(t, IsValidDocType("spreadsheet"))
	assert.False(t, IsValidDocType(""))
}

func TestRelationshipTouches(t *testing.T) {
	rel := &Relationship{SourceID: "ent:a", TargetID: "ent:b"}

	assert.True(t, rel.Touches("ent:a"))
	assert.True(t, rel.Touches("ent:b"))
	assert.False(t, rel.Touches("ent:c"))
}

func TestReasoningChainStepCount(t *testing.T) {
	chain := &ReasoningChain{}
	assert.Equal(t, 0, chain.StepCount())

	chain.Steps = []ReasoningStep{
		{StepNumber: 1, Thought: "first"},
		{StepNumber: 2, Thought: "second"},
	}
	assert.Equal(t, 2, chain.StepCount())
}
