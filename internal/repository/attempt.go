package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lingko/shadow_service/internal/client"
)

// Attempt records one scored repetition of a lesson segment.
type Attempt struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	LessonID     uuid.UUID `json:"lesson_id"`
	SegmentIndex int       `json:"segment_index"`
	ExpectedText string    `json:"expected_text"`
	ActualText   string    `json:"actual_text"`
	Accuracy     int       `json:"accuracy"` // 0..100
	CreatedAt    time.Time `json:"created_at"`
}

// AttemptRepository defines the interface for attempt data access.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *Attempt) error
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*Attempt, error)
}

// PostgresAttemptRepository implements AttemptRepository with PostgreSQL.
type PostgresAttemptRepository struct {
	db *client.PostgresClient
}

// NewPostgresAttemptRepository creates a new PostgresAttemptRepository.
func NewPostgresAttemptRepository(db *client.PostgresClient) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

// Create inserts a new attempt record.
func (r *PostgresAttemptRepository) Create(ctx context.Context, attempt *Attempt) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO attempts (user_id, lesson_id, segment_index, expected_text, actual_text, accuracy)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		attempt.UserID,
		attempt.LessonID,
		attempt.SegmentIndex,
		attempt.ExpectedText,
		attempt.ActualText,
		attempt.Accuracy,
	).Scan(&attempt.ID, &attempt.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// ListByLesson retrieves all attempts for a lesson, newest first.
func (r *PostgresAttemptRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*Attempt, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT id, user_id, lesson_id, segment_index, expected_text, actual_text, accuracy, created_at
		FROM attempts
		WHERE lesson_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*Attempt, 0)
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.LessonID,
			&a.SegmentIndex,
			&a.ExpectedText,
			&a.ActualText,
			&a.Accuracy,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return attempts, nil
}
