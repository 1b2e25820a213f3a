package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/service"
	"github.com/lingko/shadow_service/pkg/response"
)

// PracticeHandler handles attempt scoring HTTP endpoints.
type PracticeHandler struct {
	log             zerolog.Logger
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(log zerolog.Logger, practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{
		log:             log,
		practiceService: practiceService,
	}
}

// ScoreAttempt handles POST /api/v1/lessons/{lessonID}/segments/{index}/attempts
//
// Request: { "transcript": "what the learner said" }
// Response: { "attempt_id": "...", "accuracy": 80, ... }
func (h *PracticeHandler) ScoreAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		response.BadRequest(w, "invalid segment index")
		return
	}

	var req service.ScoreAttemptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.practiceService.ScoreAttempt(r.Context(), userID, lessonID, index, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// ListAttempts handles GET /api/v1/lessons/{lessonID}/attempts
func (h *PracticeHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	attempts, err := h.practiceService.ListAttempts(r.Context(), userID, lessonID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, attempts)
}

func (h *PracticeHandler) handleError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), appErr)
		return
	}
	h.log.Error().Err(err).Msg("Internal server error")
	response.InternalError(w, "internal server error")
}
