package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/iho/gosettle/internal/adapter/http/dto"
	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/mt202"
	"github.com/iho/gosettle/internal/usecase"
)

const maxMessageSize = 64 * 1024

// SubmitterService defines the behavior needed by InstructionHandler.
type SubmitterService interface {
	Submit(ctx context.Context, instruction *domain.Instruction) (*usecase.SubmitResult, error)
}

// InstructionHandler accepts raw MT202 messages and submits them as
// settlement intents.
type InstructionHandler struct {
	submitter SubmitterService
}

// NewInstructionHandler creates a new InstructionHandler.
func NewInstructionHandler(submitter SubmitterService) *InstructionHandler {
	return &InstructionHandler{submitter: submitter}
}

// Submit parses the MT202 message and records it as a settlement intent.
// The body is either the raw message (text/plain) or a JSON envelope with a
// "message" field. Resubmitting the same message returns 200 with
// already_submitted set instead of an error.
func (h *InstructionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	raw, err := readMessage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	instruction, err := mt202.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed MT202 message", err.Error())
		return
	}

	result, err := h.submitter.Submit(r.Context(), instruction)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit instruction", err.Error())
		return
	}

	status := http.StatusCreated
	if result.AlreadySubmitted {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.SubmitResponse{
		Intent:           dto.IntentFromDomain(result.Intent),
		AlreadySubmitted: result.AlreadySubmitted,
	})
}

func readMessage(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req dto.SubmitInstructionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", err
		}
		return req.Message, nil
	}

	return string(body), nil
}
