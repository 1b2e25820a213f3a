package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lingko/shadow_service/internal/client"
	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/repository"
)

// minSegmentSeconds is the shortest pause point worth stopping playback for.
// Whisper emits sub-second fragments around music and hesitations; those are
// merged into the following segment instead of becoming their own stop.
const minSegmentSeconds = 1.0

// LessonService handles lesson CRUD and pause-point derivation.
type LessonService struct {
	lessonRepo repository.LessonRepository
}

// NewLessonService creates a new LessonService.
func NewLessonService(lessonRepo repository.LessonRepository) *LessonService {
	return &LessonService{lessonRepo: lessonRepo}
}

// CreateLessonReq represents a lesson creation request. Segments are optional:
// a caller may supply pre-timed captions, or leave them empty and run
// transcription afterwards.
type CreateLessonReq struct {
	Title    string               `json:"title"`
	VideoURL string               `json:"video_url"`
	Language string               `json:"language"`
	Segments []repository.Segment `json:"segments,omitempty"`
}

// CreateLesson validates and persists a new lesson for the given user.
func (s *LessonService) CreateLesson(ctx context.Context, userID uuid.UUID, req CreateLessonReq) (*repository.Lesson, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.Validation("title is required")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return nil, errors.Validation("video_url is required")
	}

	status := repository.LessonStatusPending
	segments := normalizeSegments(req.Segments)
	if len(segments) > 0 {
		status = repository.LessonStatusTranscribed
	}

	lesson := &repository.Lesson{
		UserID:   userID,
		Title:    strings.TrimSpace(req.Title),
		VideoURL: req.VideoURL,
		Language: req.Language,
		Status:   status,
		Segments: segments,
	}

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create lesson", err)
	}

	return lesson, nil
}

// GetLesson retrieves a lesson, enforcing ownership.
func (s *LessonService) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*repository.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to get lesson", err)
	}
	if lesson == nil {
		return nil, errors.NotFound("lesson")
	}
	if lesson.UserID != userID {
		return nil, errors.Forbidden("lesson belongs to another user")
	}
	return lesson, nil
}

// ListLessons retrieves all lessons for a user.
func (s *LessonService) ListLessons(ctx context.Context, userID uuid.UUID) ([]*repository.Lesson, error) {
	lessons, err := s.lessonRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list lessons", err)
	}
	return lessons, nil
}

// DeleteLesson removes a lesson, enforcing ownership.
func (s *LessonService) DeleteLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	if _, err := s.GetLesson(ctx, userID, lessonID); err != nil {
		return err
	}
	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete lesson", err)
	}
	return nil
}

// ApplyTranscription converts caption segments from the transcript source
// into pause points and stores them on the lesson.
func (s *LessonService) ApplyTranscription(ctx context.Context, lessonID uuid.UUID, captions []client.CaptionSegment) ([]repository.Segment, error) {
	segments := DerivePausePoints(captions)
	status := repository.LessonStatusTranscribed
	if len(segments) == 0 {
		status = repository.LessonStatusFailed
	}

	if err := s.lessonRepo.UpdateSegments(ctx, lessonID, segments, status); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to store segments", err)
	}

	return segments, nil
}

// DerivePausePoints turns raw caption segments into an ordered list of pause
// points: text is trimmed, empty captions dropped, sub-second fragments
// merged into the following caption, and out-of-order timestamps clamped.
func DerivePausePoints(captions []client.CaptionSegment) []repository.Segment {
	segments := make([]repository.Segment, 0, len(captions))

	var carry string
	carryStart := -1.0

	for _, c := range captions {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		start := c.Start
		if carry != "" {
			text = carry + " " + text
			start = carryStart
			carry = ""
		}

		// Too short to stop for on its own: hold the text and prepend it
		// to the next caption.
		if c.End-start < minSegmentSeconds {
			carry = text
			carryStart = start
			continue
		}

		// Clamp regressions so pause points stay ordered.
		if n := len(segments); n > 0 && start < segments[n-1].End {
			start = segments[n-1].End
		}

		segments = append(segments, repository.Segment{
			Start: start,
			End:   c.End,
			Text:  text,
		})
	}

	// Trailing fragment becomes its own segment rather than being lost.
	if carry != "" {
		end := carryStart + minSegmentSeconds
		if n := len(segments); n > 0 && carryStart < segments[n-1].End {
			carryStart = segments[n-1].End
			end = carryStart + minSegmentSeconds
		}
		segments = append(segments, repository.Segment{
			Start: carryStart,
			End:   end,
			Text:  carry,
		})
	}

	return segments
}

// normalizeSegments sanitizes caller-supplied segments the same way derived
// ones are: trimmed text, no empties, ordered starts.
func normalizeSegments(in []repository.Segment) []repository.Segment {
	out := make([]repository.Segment, 0, len(in))
	for _, seg := range in {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if n := len(out); n > 0 && seg.Start < out[n-1].End {
			seg.Start = out[n-1].End
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		seg.Text = text
		out = append(out, seg)
	}
	return out
}
