package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/logger"
	"github.com/lingko/shadow_service/internal/repository"
)

// GetResult consumes the job result from the queue, so lesson ownership has
// to be settled before anything is popped: a stranger holding a leaked job id
// must be rejected without the queue ever being touched.
func TestGetResult_OwnershipCheckedBeforeConsuming(t *testing.T) {
	t.Parallel()

	lessonRepo := newFakeLessonRepo()
	lessonSvc := NewLessonService(lessonRepo)
	svc := NewTranscriptService(nil, nil, nil, lessonSvc, nil, 0, 0, logger.NewNop())
	ctx := context.Background()

	owner := uuid.New()
	lesson, err := lessonSvc.CreateLesson(ctx, owner, CreateLessonReq{
		Title:    "Episode 1",
		VideoURL: "https://cdn.example.com/v.mp4",
		Segments: []repository.Segment{{Start: 0, End: 2, Text: "hello"}},
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	_, err = svc.GetResult(ctx, uuid.New(), lesson.ID, "job_deadbeef")
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrForbidden {
		t.Errorf("stranger GetResult error = %v, want FORBIDDEN", err)
	}

	_, err = svc.GetResult(ctx, owner, uuid.New(), "job_deadbeef")
	appErr, ok = err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrNotFound {
		t.Errorf("unknown lesson GetResult error = %v, want NOT_FOUND", err)
	}

	// Only once ownership holds does the missing queue surface.
	_, err = svc.GetResult(ctx, owner, lesson.ID, "job_deadbeef")
	appErr, ok = err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrSpeechService {
		t.Errorf("owner GetResult error = %v, want SPEECH_SERVICE_ERROR", err)
	}
}

func TestStartTranscription_RequiresClients(t *testing.T) {
	t.Parallel()

	lessonSvc := NewLessonService(newFakeLessonRepo())
	svc := NewTranscriptService(nil, nil, nil, lessonSvc, nil, 0, 0, logger.NewNop())

	_, err := svc.StartTranscription(context.Background(), uuid.New(), uuid.New(), []byte("data"), "a.mp4", "video/mp4")
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrSpeechService {
		t.Errorf("StartTranscription error = %v, want SPEECH_SERVICE_ERROR", err)
	}
}
