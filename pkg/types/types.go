// Package types defines the core data structures for the Cogito reasoning
// system. These types represent reasoning chains, knowledge graph entities
// and relationships, vector documents, and conversation messages shared
// across the engine packages.
package types

// Strategy identifies a reasoning approach used to structure a prompt
// and parse the model's response.
type Strategy string

// Reasoning strategy constants
const (
	// StrategyChainOfThought asks the model to expose intermediate reasoning
	// before a final answer. This is the default strategy.
	StrategyChainOfThought Strategy = "chain_of_thought"

	// StrategyReAct interleaves Thought/Action/Observation triplets.
	StrategyReAct Strategy = "react"

	// StrategyStepByStep produces an ordered list of numbered steps.
	StrategyStepByStep Strategy = "step_by_step"

	// StrategyProblemDecomposition breaks a problem into components first.
	StrategyProblemDecomposition Strategy = "problem_decomposition"

	// StrategyReflection analyzes root causes and evaluates alternatives.
	StrategyReflection Strategy = "reflection"
)

// ValidStrategies is a slice of all valid reasoning strategies for validation.
var ValidStrategies = []Strategy{
	StrategyChainOfThought,
	StrategyReAct,
	StrategyStepByStep,
	StrategyProblemDecomposition,
	StrategyReflection,
}

// IsValidStrategy checks if the given strategy is valid.
func IsValidStrategy(s Strategy) bool {
	for _, valid := range ValidStrategies {
		if valid == s {
			return true
		}
	}
	return false
}

// Entity type constants - 15 types for knowledge representation
const (
	// Knowledge types
	EntityTypeConcept      = "concept"
	EntityTypeConversation = "conversation"
	EntityTypePerson       = "person"
	EntityTypeProject      = "project"

	// Code structure types
	EntityTypeCodeFile = "code_file"
	EntityTypeFunction = "function"
	EntityTypeClass    = "class"
	EntityTypeVariable = "variable"
	EntityTypeError    = "error"

	// Technology types
	EntityTypeTechnology = "technology"
	EntityTypeFramework  = "framework"
	EntityTypeLibrary    = "library"
	EntityTypeTool       = "tool"
	EntityTypeDatabase   = "database"
	EntityTypeAPI        = "api"
)

// ValidEntityTypes is a slice of all valid entity types for validation.
var ValidEntityTypes = []string{
	EntityTypeConcept,
	EntityTypeConversation,
	EntityTypePerson,
	EntityTypeProject,
	EntityTypeCodeFile,
	EntityTypeFunction,
	EntityTypeClass,
	EntityTypeVariable,
	EntityTypeError,
	EntityTypeTechnology,
	EntityTypeFramework,
	EntityTypeLibrary,
	EntityTypeTool,
	EntityTypeDatabase,
	EntityTypeAPI,
}

// IsValidEntityType checks if the given entity type is valid.
func IsValidEntityType(entityType string) bool {
	for _, validType := range ValidEntityTypes {
		if validType == entityType {
			return true
		}
	}
	return false
}

// Relationship type constants - 10 types of directed edges
const (
	RelRelatedTo     = "related_to"     // Generic association
	RelDependsOn     = "depends_on"     // Dependency relationship
	RelImplements    = "implements"     // Implementation relationship
	RelUses          = "uses"           // Entity uses another entity
	RelContains      = "contains"       // Container relationship
	RelSimilarTo     = "similar_to"     // Semantic similarity
	RelFollowsFrom   = "follows_from"   // Temporal/causal succession
	RelResolves      = "resolves"       // Fix resolves an error
	RelCauses        = "causes"         // Cause relationship
	RelMentionedWith = "mentioned_with" // Co-occurrence in the same turn
)

// ValidRelationTypes is a slice of all valid relationship types for validation.
var ValidRelationTypes = []string{
	RelRelatedTo,
	RelDependsOn,
	RelImplements,
	RelUses,
	RelContains,
	RelSimilarTo,
	RelFollowsFrom,
	RelResolves,
	RelCauses,
	RelMentionedWith,
}

// IsValidRelationType checks if the given relationship type is valid.
func IsValidRelationType(relType string) bool {
	for _, validType := range ValidRelationTypes {
		if validType == relType {
			return true
		}
	}
	return false
}

// Document type constants - classify the origin of indexed content
const (
	DocTypeConversation   = "conversation"
	DocTypeCodeSnippet    = "code_snippet"
	DocTypeErrorLog       = "error_log"
	DocTypeDocumentation  = "documentation"
	DocTypeKnowledgeNote  = "knowledge_note"
	DocTypePluginInfo     = "plugin_info"
	DocTypeUserPreference = "user_preference"
)

// ValidDocTypes is a slice of all valid document types for validation.
var ValidDocTypes = []string{
	DocTypeConversation,
	DocTypeCodeSnippet,
	DocTypeErrorLog,
	DocTypeDocumentation,
	DocTypeKnowledgeNote,
	DocTypePluginInfo,
	DocTypeUserPreference,
}

// IsValidDocType checks if the given document type is valid.
func IsValidDocType(docType string) bool {
	for _, validType := range ValidDocTypes {
		if validType == docType {
			return true
		}
	}
	return false
}
