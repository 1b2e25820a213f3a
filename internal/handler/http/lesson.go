package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/middleware"
	"github.com/lingko/shadow_service/internal/service"
	"github.com/lingko/shadow_service/pkg/response"
)

// Allowed media MIME types for transcription uploads.
var allowedMediaMIME = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
	"audio/mpeg": true,
	"audio/mp4":  true,
	"audio/wav":  true,
	"audio/webm": true,
}

// LessonHandler handles lesson CRUD and transcription HTTP endpoints.
type LessonHandler struct {
	log               zerolog.Logger
	lessonService     *service.LessonService
	transcriptService *service.TranscriptService
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(log zerolog.Logger, lessonService *service.LessonService, transcriptService *service.TranscriptService) *LessonHandler {
	return &LessonHandler{
		log:               log,
		lessonService:     lessonService,
		transcriptService: transcriptService,
	}
}

// Create handles POST /api/v1/lessons
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var req service.CreateLessonReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	lesson, err := h.lessonService.CreateLesson(r.Context(), userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, lesson)
}

// List handles GET /api/v1/lessons
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessons, err := h.lessonService.ListLessons(r.Context(), userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, lessons)
}

// Get handles GET /api/v1/lessons/{lessonID}
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	lesson, err := h.lessonService.GetLesson(r.Context(), userID, lessonID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, lesson)
}

// Delete handles DELETE /api/v1/lessons/{lessonID}
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	if err := h.lessonService.DeleteLesson(r.Context(), userID, lessonID); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// Transcribe handles POST /api/v1/lessons/{lessonID}/transcribe
// Accepts multipart media, returns a job id immediately, and transcribes in
// the background.
//
// Request: multipart/form-data with "media" field
// Response: { "job_id": "job_xxx", "lesson_id": "...", "status": "processing" }
func (h *LessonHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	// Limit request body to 25MB (Whisper's own upload cap)
	const maxUploadSize = 25 << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "file too large, maximum size is 25MB")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		response.BadRequest(w, "media file is required (form field: 'media')")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		// Fallback: detect from filename extension
		name := strings.ToLower(header.Filename)
		switch {
		case strings.HasSuffix(name, ".mp4"):
			contentType = "video/mp4"
		case strings.HasSuffix(name, ".mp3"):
			contentType = "audio/mpeg"
		case strings.HasSuffix(name, ".wav"):
			contentType = "audio/wav"
		}
	}

	if !allowedMediaMIME[contentType] {
		response.BadRequest(w, "invalid file type, allowed: mp4, webm, mp3, m4a, wav")
		return
	}

	media, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read media file")
		return
	}

	result, err := h.transcriptService.StartTranscription(r.Context(), userID, lessonID, media, header.Filename, contentType)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, result)
}

// TranscriptResult handles GET /api/v1/lessons/{lessonID}/transcript
// Blocks until the transcription job result is available or the wait times
// out (504).
//
// Query param: job_id
func (h *LessonHandler) TranscriptResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		response.BadRequest(w, "job_id is required")
		return
	}

	result, err := h.transcriptService.GetResult(r.Context(), userID, lessonID, jobID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func (h *LessonHandler) handleError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), appErr)
		return
	}
	h.log.Error().Err(err).Msg("Internal server error")
	response.InternalError(w, "internal server error")
}

// authedUserID extracts the authenticated user's UUID, writing a 401 when the
// auth middleware did not run or the subject is malformed.
func authedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := middleware.GetUserID(r.Context())
	if raw == "" {
		response.Unauthorized(w, "user not authenticated")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Unauthorized(w, "invalid user identity")
		return uuid.Nil, false
	}
	return id, true
}
