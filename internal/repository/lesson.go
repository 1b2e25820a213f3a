package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingko/shadow_service/internal/client"
)

// Lesson status values.
const (
	LessonStatusPending     = "pending"
	LessonStatusTranscribed = "transcribed"
	LessonStatusFailed      = "failed"
)

// Segment is a pause point: a timestamp in the lesson video and the caption
// text the learner is expected to repeat there.
type Segment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// Lesson represents a practice lesson built around one video.
type Lesson struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"video_url"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonRepository defines the interface for lesson data access.
type LessonRepository interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Lesson, error)
	UpdateSegments(ctx context.Context, id uuid.UUID, segments []Segment, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresLessonRepository implements LessonRepository with PostgreSQL.
type PostgresLessonRepository struct {
	db *client.PostgresClient
}

// NewPostgresLessonRepository creates a new PostgresLessonRepository.
func NewPostgresLessonRepository(db *client.PostgresClient) *PostgresLessonRepository {
	return &PostgresLessonRepository{db: db}
}

// Create inserts a new lesson record.
func (r *PostgresLessonRepository) Create(ctx context.Context, lesson *Lesson) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	segmentsJSON, err := json.Marshal(lesson.Segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}

	query := `
		INSERT INTO lessons (user_id, title, video_url, language, status, segments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		lesson.UserID,
		lesson.Title,
		lesson.VideoURL,
		lesson.Language,
		lesson.Status,
		segmentsJSON,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by its ID. Returns (nil, nil) when no lesson
// exists.
func (r *PostgresLessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT id, user_id, title, video_url, language, status, segments, created_at, updated_at
		FROM lessons
		WHERE id = $1
	`

	lesson, err := scanLesson(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return lesson, nil
}

// ListByUser retrieves all lessons belonging to a user, newest first.
func (r *PostgresLessonRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Lesson, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT id, user_id, title, video_url, language, status, segments, created_at, updated_at
		FROM lessons
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]*Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}

	return lessons, nil
}

// UpdateSegments replaces a lesson's pause points (JSONB) and status after
// transcription completes.
func (r *PostgresLessonRepository) UpdateSegments(ctx context.Context, id uuid.UUID, segments []Segment, status string) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}

	query := `UPDATE lessons SET segments = $1, status = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.Pool.Exec(ctx, query, segmentsJSON, status, id)
	if err != nil {
		return fmt.Errorf("failed to update lesson segments: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found: %s", id)
	}

	return nil
}

// Delete removes a lesson. Attempts referencing it are removed by the
// ON DELETE CASCADE constraint.
func (r *PostgresLessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	result, err := r.db.Pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found: %s", id)
	}

	return nil
}

// scanLesson scans one lesson row, unmarshalling the JSONB segments column.
func scanLesson(row pgx.Row) (*Lesson, error) {
	var lesson Lesson
	var segmentsJSON []byte

	err := row.Scan(
		&lesson.ID,
		&lesson.UserID,
		&lesson.Title,
		&lesson.VideoURL,
		&lesson.Language,
		&lesson.Status,
		&segmentsJSON,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(segmentsJSON) > 0 {
		if err := json.Unmarshal(segmentsJSON, &lesson.Segments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal segments: %w", err)
		}
	}
	if lesson.Segments == nil {
		lesson.Segments = make([]Segment, 0)
	}

	return &lesson, nil
}
