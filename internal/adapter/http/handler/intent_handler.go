package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosettle/internal/adapter/http/dto"
	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

// IntentService defines the behavior needed by IntentHandler.
type IntentService interface {
	GetIntent(ctx context.Context, instructionID string) (*domain.SettlementIntent, error)
	ListIntents(ctx context.Context, input usecase.ListIntentsInput) ([]*domain.SettlementIntent, error)
	Dispute(ctx context.Context, instructionID, reason string) (*domain.SettlementIntent, error)
	Confirm(ctx context.Context, instructionID string) (*domain.SettlementIntent, error)
	StatusCounts(ctx context.Context) (map[domain.IntentStatus]int64, error)
}

// IntentHandler handles intent-related HTTP requests.
type IntentHandler struct {
	intentUC IntentService
}

// NewIntentHandler creates a new IntentHandler.
func NewIntentHandler(intentUC IntentService) *IntentHandler {
	return &IntentHandler{intentUC: intentUC}
}

// Get retrieves an intent by instruction id.
func (h *IntentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing instruction id", "")
		return
	}

	intent, err := h.intentUC.GetIntent(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get intent", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntentFromDomain(intent))
}

// List lists intents in creation order.
func (h *IntentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	intents, err := h.intentUC.ListIntents(r.Context(), usecase.ListIntentsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list intents", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntentsFromDomain(intents))
}

// Dispute flags an intent for manual resolution.
func (h *IntentHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing instruction id", "")
		return
	}

	var req dto.DisputeIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	intent, err := h.intentUC.Dispute(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to dispute intent", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntentFromDomain(intent))
}

// Confirm applies the explicit confirm transition.
func (h *IntentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing instruction id", "")
		return
	}

	intent, err := h.intentUC.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm intent", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntentFromDomain(intent))
}

// Stats reports intent counts per lifecycle status.
func (h *IntentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.intentUC.StatusCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count intents", err.Error())
		return
	}

	resp := dto.StatusCountsResponse{Counts: make(map[string]int64, len(counts))}
	for status, count := range counts {
		resp.Counts[string(status)] = count
	}

	writeJSON(w, http.StatusOK, resp)
}
