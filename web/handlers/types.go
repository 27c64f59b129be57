// Package handlers provides the HTTP handlers and middleware for the
// Cogito API.
package handlers

import (
	"github.com/codelegend/cogito/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ReasonRequest is the request format for POST /api/reason.
type ReasonRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"session_id,omitempty"`
	Strategy       string `json:"strategy,omitempty"`
	ForceReasoning *bool  `json:"force_reasoning,omitempty"`
}

// ReasonResponse is the response format for POST /api/reason.
type ReasonResponse struct {
	Reply     string                `json:"reply"`
	SessionID string                `json:"session_id"`
	Reasoned  bool                  `json:"reasoned"`
	Chain     *types.ReasoningChain `json:"chain,omitempty"`
}

// NoteRequest is the request format for POST /api/knowledge/notes.
type NoteRequest struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NoteResponse is the response format for POST /api/knowledge/notes.
type NoteResponse struct {
	DocumentID string   `json:"document_id"`
	EntityIDs  []string `json:"entity_ids,omitempty"`
}

// ReasoningEvent is broadcast over the WebSocket hub after each completed
// reasoning turn.
type ReasoningEvent struct {
	Type       string         `json:"type"` // "reasoning_complete"
	SessionID  string         `json:"session_id"`
	Strategy   types.Strategy `json:"strategy"`
	StepCount  int            `json:"step_count"`
	Confidence float64        `json:"confidence"`
}

// KnowledgeEvent is broadcast when the knowledge graph gains entities.
type KnowledgeEvent struct {
	Type      string   `json:"type"` // "knowledge_updated"
	EntityIDs []string `json:"entity_ids"`
}
