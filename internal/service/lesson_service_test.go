package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lingko/shadow_service/internal/client"
	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/repository"
)

// fakeLessonRepo is an in-memory LessonRepository for tests.
type fakeLessonRepo struct {
	lessons map[uuid.UUID]*repository.Lesson
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: make(map[uuid.UUID]*repository.Lesson)}
}

func (f *fakeLessonRepo) Create(ctx context.Context, lesson *repository.Lesson) error {
	lesson.ID = uuid.New()
	lesson.CreatedAt = time.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	f.lessons[lesson.ID] = lesson
	return nil
}

func (f *fakeLessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Lesson, error) {
	return f.lessons[id], nil
}

func (f *fakeLessonRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*repository.Lesson, error) {
	var out []*repository.Lesson
	for _, l := range f.lessons {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) UpdateSegments(ctx context.Context, id uuid.UUID, segments []repository.Segment, status string) error {
	l, ok := f.lessons[id]
	if !ok {
		return nil
	}
	l.Segments = segments
	l.Status = status
	return nil
}

func (f *fakeLessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.lessons, id)
	return nil
}

func TestCreateLesson_Validation(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(newFakeLessonRepo())
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name string
		req  CreateLessonReq
	}{
		{"missing title", CreateLessonReq{VideoURL: "https://cdn.example.com/v.mp4"}},
		{"blank title", CreateLessonReq{Title: "   ", VideoURL: "https://cdn.example.com/v.mp4"}},
		{"missing video url", CreateLessonReq{Title: "Episode 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLesson(ctx, userID, tt.req)
			appErr, ok := err.(*errors.AppError)
			if !ok || appErr.Code != errors.ErrValidation {
				t.Errorf("CreateLesson error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestCreateLesson_StatusFollowsSegments(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(newFakeLessonRepo())
	ctx := context.Background()
	userID := uuid.New()

	bare, err := svc.CreateLesson(ctx, userID, CreateLessonReq{
		Title:    "Episode 1",
		VideoURL: "https://cdn.example.com/v.mp4",
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	if bare.Status != repository.LessonStatusPending {
		t.Errorf("status without segments = %q, want %q", bare.Status, repository.LessonStatusPending)
	}

	withSegs, err := svc.CreateLesson(ctx, userID, CreateLessonReq{
		Title:    "Episode 2",
		VideoURL: "https://cdn.example.com/v2.mp4",
		Segments: []repository.Segment{
			{Start: 0, End: 2.5, Text: " Hello there. "},
			{Start: 2.0, End: 4.0, Text: "General greeting."},
			{Start: 4.0, End: 5.0, Text: "   "},
		},
	})
	if err != nil {
		t.Fatalf("CreateLesson with segments: %v", err)
	}
	if withSegs.Status != repository.LessonStatusTranscribed {
		t.Errorf("status with segments = %q, want %q", withSegs.Status, repository.LessonStatusTranscribed)
	}

	want := []repository.Segment{
		{Start: 0, End: 2.5, Text: "Hello there."},
		{Start: 2.5, End: 4.0, Text: "General greeting."},
	}
	if !reflect.DeepEqual(withSegs.Segments, want) {
		t.Errorf("normalized segments = %+v, want %+v", withSegs.Segments, want)
	}
}

func TestGetLesson_Ownership(t *testing.T) {
	t.Parallel()

	repo := newFakeLessonRepo()
	svc := NewLessonService(repo)
	ctx := context.Background()

	owner := uuid.New()
	lesson, err := svc.CreateLesson(ctx, owner, CreateLessonReq{
		Title:    "Private",
		VideoURL: "https://cdn.example.com/v.mp4",
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	if _, err := svc.GetLesson(ctx, owner, lesson.ID); err != nil {
		t.Errorf("owner GetLesson: %v", err)
	}

	_, err = svc.GetLesson(ctx, uuid.New(), lesson.ID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrForbidden {
		t.Errorf("stranger GetLesson error = %v, want FORBIDDEN", err)
	}

	_, err = svc.GetLesson(ctx, owner, uuid.New())
	appErr, ok = err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrNotFound {
		t.Errorf("missing GetLesson error = %v, want NOT_FOUND", err)
	}
}

func TestDerivePausePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		captions []client.CaptionSegment
		want     []repository.Segment
	}{
		{
			name:     "empty input",
			captions: nil,
			want:     []repository.Segment{},
		},
		{
			name: "blank captions dropped",
			captions: []client.CaptionSegment{
				{Start: 0, End: 2, Text: "  "},
				{Start: 2, End: 4, Text: "Keep this."},
			},
			want: []repository.Segment{
				{Start: 2, End: 4, Text: "Keep this."},
			},
		},
		{
			name: "sub-second fragment merges into next caption",
			captions: []client.CaptionSegment{
				{Start: 0, End: 0.4, Text: "Uh,"},
				{Start: 0.4, End: 3, Text: "where were we?"},
			},
			want: []repository.Segment{
				{Start: 0, End: 3, Text: "Uh, where were we?"},
			},
		},
		{
			name: "chained fragments accumulate",
			captions: []client.CaptionSegment{
				{Start: 0, End: 0.3, Text: "I"},
				{Start: 0.3, End: 0.6, Text: "mean"},
				{Start: 0.6, End: 2, Text: "it works."},
			},
			want: []repository.Segment{
				{Start: 0, End: 2, Text: "I mean it works."},
			},
		},
		{
			name: "start regression clamped to previous end",
			captions: []client.CaptionSegment{
				{Start: 0, End: 3, Text: "First line."},
				{Start: 2.5, End: 5, Text: "Second line."},
			},
			want: []repository.Segment{
				{Start: 0, End: 3, Text: "First line."},
				{Start: 3, End: 5, Text: "Second line."},
			},
		},
		{
			name: "trailing fragment kept as its own segment",
			captions: []client.CaptionSegment{
				{Start: 0, End: 2, Text: "All done."},
				{Start: 2, End: 2.3, Text: "Bye."},
			},
			want: []repository.Segment{
				{Start: 0, End: 2, Text: "All done."},
				{Start: 2, End: 3, Text: "Bye."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePausePoints(tt.captions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DerivePausePoints() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyTranscription_MarksFailureOnEmpty(t *testing.T) {
	t.Parallel()

	repo := newFakeLessonRepo()
	svc := NewLessonService(repo)
	ctx := context.Background()

	lesson, err := svc.CreateLesson(ctx, uuid.New(), CreateLessonReq{
		Title:    "Silent clip",
		VideoURL: "https://cdn.example.com/v.mp4",
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	segments, err := svc.ApplyTranscription(ctx, lesson.ID, nil)
	if err != nil {
		t.Fatalf("ApplyTranscription: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("segments = %+v, want none", segments)
	}
	if repo.lessons[lesson.ID].Status != repository.LessonStatusFailed {
		t.Errorf("status = %q, want %q", repo.lessons[lesson.ID].Status, repository.LessonStatusFailed)
	}
}
