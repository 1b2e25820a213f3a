package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/repository"
	"github.com/lingko/shadow_service/pkg/accuracy"
)

// PracticeService scores spoken repetitions against lesson segments and
// records the attempts.
type PracticeService struct {
	lessonService *LessonService
	attemptRepo   repository.AttemptRepository
	events        EventPublisher
	maxTextLen    int
	log           zerolog.Logger
}

// NewPracticeService creates a new PracticeService. maxTextLen bounds both
// sides of a scoring call; <= 0 means the default of 2000 runes.
func NewPracticeService(
	lessonService *LessonService,
	attemptRepo repository.AttemptRepository,
	events EventPublisher,
	maxTextLen int,
	log zerolog.Logger,
) *PracticeService {
	if maxTextLen <= 0 {
		maxTextLen = 2000
	}
	return &PracticeService{
		lessonService: lessonService,
		attemptRepo:   attemptRepo,
		events:        events,
		maxTextLen:    maxTextLen,
		log:           log,
	}
}

// ScoreAttemptReq represents a scoring request: the learner's transcript for
// one lesson segment, as produced by the browser's speech recognition.
type ScoreAttemptReq struct {
	Transcript string `json:"transcript"`
}

// ScoreAttemptResult is returned from a scoring call.
type ScoreAttemptResult struct {
	AttemptID    string `json:"attempt_id"`
	LessonID     string `json:"lesson_id"`
	SegmentIndex int    `json:"segment_index"`
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
	Accuracy     int    `json:"accuracy"` // 0..100
}

// ScoreAttempt scores a transcript against a lesson segment and persists the
// attempt. Scoring itself never fails for string input; errors here are
// lookup and persistence errors only.
func (s *PracticeService) ScoreAttempt(ctx context.Context, userID, lessonID uuid.UUID, segmentIndex int, req ScoreAttemptReq) (*ScoreAttemptResult, error) {
	lesson, err := s.lessonService.GetLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	if segmentIndex < 0 || segmentIndex >= len(lesson.Segments) {
		return nil, errors.Validation("segment index out of range")
	}

	// Bound input length at the call boundary; the scorer itself is total
	// but quadratic per word pair.
	transcript := truncateRunes(req.Transcript, s.maxTextLen)
	expected := truncateRunes(lesson.Segments[segmentIndex].Text, s.maxTextLen)

	score := accuracy.Score(expected, transcript)

	attempt := &repository.Attempt{
		UserID:       userID,
		LessonID:     lessonID,
		SegmentIndex: segmentIndex,
		ExpectedText: expected,
		ActualText:   transcript,
		Accuracy:     score,
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to record attempt", err)
	}

	result := &ScoreAttemptResult{
		AttemptID:    attempt.ID.String(),
		LessonID:     lessonID.String(),
		SegmentIndex: segmentIndex,
		Expected:     expected,
		Actual:       transcript,
		Accuracy:     score,
	}

	// Best-effort analytics event; scoring succeeded regardless.
	if s.events != nil {
		s.events.PublishAsync(ctx, result, map[string]string{
			"event":     "attempt.scored",
			"lesson_id": lessonID.String(),
		})
	}

	s.log.Info().
		Str("lesson_id", lessonID.String()).
		Int("segment_index", segmentIndex).
		Int("accuracy", score).
		Msg("Attempt scored")

	return result, nil
}

// ListAttempts returns all attempts for a lesson, enforcing ownership.
func (s *PracticeService) ListAttempts(ctx context.Context, userID, lessonID uuid.UUID) ([]*repository.Attempt, error) {
	if _, err := s.lessonService.GetLesson(ctx, userID, lessonID); err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list attempts", err)
	}
	return attempts, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
