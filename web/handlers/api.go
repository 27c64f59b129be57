package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codelegend/cogito/internal/config"
	"github.com/codelegend/cogito/internal/conversation"
	"github.com/codelegend/cogito/internal/extract"
	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/internal/rag"
	"github.com/codelegend/cogito/internal/reasoning"
	"github.com/codelegend/cogito/internal/vector"
	"github.com/codelegend/cogito/pkg/types"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// Deps are the wired subsystems the API handlers operate on. Turns is an
// optional channel feeding the async knowledge extractor.
type Deps struct {
	Config        *config.Config
	Orchestrator  *reasoning.Orchestrator
	Retriever     *rag.Retriever
	Graph         *knowledge.Graph
	Index         vector.Index
	Conversations *conversation.Log
	Turns         chan<- extract.Turn
	Hub           *WebSocketHub
}

// APIHandlers contains the HTTP handlers for the REST API.
type APIHandlers struct {
	deps Deps
}

// NewAPIHandlers creates handlers over the wired subsystems.
func NewAPIHandlers(deps Deps) *APIHandlers {
	return &APIHandlers{deps: deps}
}

// Reason handles POST /api/reason: run a message through the reasoning
// pipeline and return the reply with its chain when reasoning applied.
func (h *APIHandlers) Reason(w http.ResponseWriter, r *http.Request) {
	var req ReasonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required", nil)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	opts := reasoning.Options{ForceReasoning: req.ForceReasoning}
	if req.Strategy != "" {
		strategy := types.Strategy(req.Strategy)
		if !types.IsValidStrategy(strategy) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", req.Strategy), nil)
			return
		}
		opts.Strategy = strategy
	}

	ctx := r.Context()
	h.recordMessage(ctx, req.SessionID, "user", req.Message)

	reply, chain, err := h.deps.Orchestrator.Respond(ctx, req.Message, req.SessionID, opts)
	if err != nil {
		respondError(w, http.StatusBadGateway, "reasoning failed", err)
		return
	}

	h.recordMessage(ctx, req.SessionID, "assistant", reply)
	h.indexTurn(req.SessionID, req.Message, reply)

	if h.deps.Turns != nil {
		turn := extract.Turn{Text: req.Message + "\n" + reply, Source: req.SessionID}
		select {
		case h.deps.Turns <- turn:
		default:
			log.Printf("[api] extraction queue full, skipping turn")
		}
	}

	if h.deps.Hub != nil && chain != nil {
		h.deps.Hub.Broadcast(ReasoningEvent{
			Type:       "reasoning_complete",
			SessionID:  req.SessionID,
			Strategy:   chain.Strategy,
			StepCount:  chain.StepCount(),
			Confidence: chain.ConfidenceScore,
		})
	}

	respondJSON(w, http.StatusOK, ReasonResponse{
		Reply:     reply,
		SessionID: req.SessionID,
		Reasoned:  chain != nil,
		Chain:     chain,
	})
}

// GetContext handles GET /api/context?query=...&session_id=...: return the
// retrieved context for a query without invoking the model.
func (h *APIHandlers) GetContext(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required", nil)
		return
	}
	sessionID := r.URL.Query().Get("session_id")

	retrieved := h.deps.Retriever.Retrieve(r.Context(), query, sessionID, rag.DefaultOptions())

	// format=prompt returns the packed prompt text instead of the raw
	// context, with an optional max_tokens override.
	if r.URL.Query().Get("format") == "prompt" {
		maxTokens := parseInt(r.URL.Query().Get("max_tokens"), 0)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, h.deps.Retriever.FormatForPrompt(retrieved, maxTokens))
		return
	}

	respondJSON(w, http.StatusOK, retrieved)
}

// CreateNote handles POST /api/knowledge/notes: store a knowledge note in
// the vector index and extract entities from it.
func (h *APIHandlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required", nil)
		return
	}

	docID, err := h.deps.Index.Add(r.Context(), req.Content, types.DocTypeKnowledgeNote, req.Metadata)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store note", err)
		return
	}

	var entityIDs []string
	if h.deps.Graph != nil {
		extractor := extract.NewKnowledgeExtractor(h.deps.Graph)
		entityIDs, err = extractor.Apply(r.Context(), req.Content, "note:"+docID)
		if err != nil {
			log.Printf("[api] entity extraction for note %s failed: %v", docID, err)
		}
		if h.deps.Hub != nil && len(entityIDs) > 0 {
			h.deps.Hub.Broadcast(KnowledgeEvent{Type: "knowledge_updated", EntityIDs: entityIDs})
		}
	}

	respondJSON(w, http.StatusCreated, NoteResponse{DocumentID: docID, EntityIDs: entityIDs})
}

// KnowledgeStats handles GET /api/knowledge/stats.
func (h *APIHandlers) KnowledgeStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Graph.Stats())
}

// ReasoningExport handles GET /api/reasoning/export: the aggregated
// reasoning history analysis.
func (h *APIHandlers) ReasoningExport(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Orchestrator.ExportAnalysis())
}

// Health handles GET /health.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recordMessage appends to the conversation log, best-effort.
func (h *APIHandlers) recordMessage(ctx context.Context, sessionID, role, content string) {
	if h.deps.Conversations == nil || strings.TrimSpace(content) == "" {
		return
	}
	if err := h.deps.Conversations.Append(ctx, sessionID, role, content); err != nil {
		log.Printf("[api] failed to record %s message: %v", role, err)
	}
}

// indexTurn stores the exchange as a conversation document so future
// queries can retrieve it semantically. Best-effort, off the request path.
func (h *APIHandlers) indexTurn(sessionID, message, reply string) {
	if h.deps.Index == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		content := fmt.Sprintf("user: %s\nassistant: %s", message, reply)
		meta := map[string]string{"session_id": sessionID}
		if _, err := h.deps.Index.Add(ctx, content, types.DocTypeConversation, meta); err != nil {
			log.Printf("[api] failed to index conversation turn: %v", err)
		}
	}()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseInt parses an integer, returning defaultValue when parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[api] failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{"error": err.Error()}
	}
	respondJSON(w, statusCode, errResp)
}
