package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lingko/shadow_service/internal/client"
	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/repository"
)

const (
	// Redis key prefix for transcript job results
	transcriptResultKeyPrefix = "transcript:result:"
	// TTL for job results in Redis
	transcriptResultTTL = 10 * time.Minute
	// Default timeout for BLPOP waiting
	defaultResultTimeout = 10 * time.Second
	// Default ceiling for one background Whisper call
	defaultTranscribeTimeout = 2 * time.Minute
)

// EventPublisher publishes domain events. Satisfied by client.PubSubClient;
// nil-able since events are optional. Publish waits for the broker ack and
// belongs in background work; PublishAsync is best-effort for the request
// path.
type EventPublisher interface {
	Publish(ctx context.Context, data interface{}, attrs map[string]string) error
	PublishAsync(ctx context.Context, data interface{}, attrs map[string]string)
}

// TranscriptJobResult is stored in Redis when a background transcription
// finishes and returned to the polling client.
type TranscriptJobResult struct {
	JobID    string               `json:"job_id"`
	LessonID string               `json:"lesson_id"`
	Status   string               `json:"status"` // "done" or "failed"
	Error    string               `json:"error,omitempty"`
	MediaURL string               `json:"media_url,omitempty"`
	Segments []repository.Segment `json:"segments"`
}

// StartResult is returned immediately from the transcription start endpoint.
type StartResult struct {
	JobID    string `json:"job_id"`
	LessonID string `json:"lesson_id"`
	Status   string `json:"status"`
}

// TranscriptService runs the 2-step async transcription flow: the start call
// uploads the media and returns a job id immediately, a background goroutine
// transcribes and derives pause points, and the result call blocks on Redis
// until the job lands or the wait times out.
type TranscriptService struct {
	openaiClient  *client.OpenAIClient
	r2Client      *client.R2Client
	redisClient   *client.RedisClient
	lessonService *LessonService
	events            EventPublisher
	resultTimeout     time.Duration
	transcribeTimeout time.Duration
	log               zerolog.Logger
}

// NewTranscriptService creates a new TranscriptService.
func NewTranscriptService(
	openaiClient *client.OpenAIClient,
	r2Client *client.R2Client,
	redisClient *client.RedisClient,
	lessonService *LessonService,
	events EventPublisher,
	resultTimeout time.Duration,
	transcribeTimeout time.Duration,
	log zerolog.Logger,
) *TranscriptService {
	if resultTimeout <= 0 {
		resultTimeout = defaultResultTimeout
	}
	if transcribeTimeout <= 0 {
		transcribeTimeout = defaultTranscribeTimeout
	}
	return &TranscriptService{
		openaiClient:      openaiClient,
		r2Client:          r2Client,
		redisClient:       redisClient,
		lessonService:     lessonService,
		events:            events,
		resultTimeout:     resultTimeout,
		transcribeTimeout: transcribeTimeout,
		log:               log,
	}
}

// StartTranscription uploads lesson media, spawns the background
// transcription, and returns the job id. This is the PRODUCER side.
func (s *TranscriptService) StartTranscription(ctx context.Context, userID, lessonID uuid.UUID, media []byte, filename, contentType string) (*StartResult, error) {
	if s.openaiClient == nil {
		return nil, errors.New(errors.ErrSpeechService, "transcription client not configured")
	}
	if s.redisClient == nil {
		return nil, errors.New(errors.ErrSpeechService, "redis client not configured")
	}

	// Ownership check before doing any work.
	lesson, err := s.lessonService.GetLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	jobID := fmt.Sprintf("job_%s", uuid.New().String()[:8])

	// Upload media first so a transcription failure never loses the file.
	var mediaURL string
	if s.r2Client != nil {
		key := fmt.Sprintf("lessons/%s/%s_%s", lessonID, jobID, filename)
		mediaURL, err = s.r2Client.Upload(ctx, key, media, contentType)
		if err != nil {
			return nil, errors.Wrap(errors.ErrStorageService, "failed to upload media", err)
		}
	}

	s.log.Info().
		Str("job_id", jobID).
		Str("lesson_id", lessonID.String()).
		Int("media_bytes", len(media)).
		Msg("Transcription started, spawning background goroutine")

	// Fire-and-forget goroutine; the client polls for the result.
	go s.processTranscription(jobID, lesson, media, filename, mediaURL)

	return &StartResult{
		JobID:    jobID,
		LessonID: lessonID.String(),
		Status:   "processing",
	}, nil
}

// processTranscription is the background goroutine that calls Whisper,
// derives pause points, persists them, and pushes the result to Redis.
func (s *TranscriptService) processTranscription(jobID string, lesson *repository.Lesson, media []byte, filename, mediaURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.transcribeTimeout)
	defer cancel()

	redisKey := transcriptResultKeyPrefix + jobID
	result := TranscriptJobResult{
		JobID:    jobID,
		LessonID: lesson.ID.String(),
		MediaURL: mediaURL,
		Segments: make([]repository.Segment, 0),
	}

	transcription, err := s.openaiClient.Transcribe(ctx, media, filename, lesson.Language)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("Transcription failed")
		result.Status = "failed"
		result.Error = "transcription failed"
		if dbErr := s.lessonService.lessonRepo.UpdateSegments(ctx, lesson.ID, nil, repository.LessonStatusFailed); dbErr != nil {
			s.log.Error().Err(dbErr).Str("job_id", jobID).Msg("Failed to mark lesson failed")
		}
		s.pushResult(ctx, redisKey, result)
		return
	}

	segments, err := s.lessonService.ApplyTranscription(ctx, lesson.ID, transcription.Segments)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to store pause points")
		result.Status = "failed"
		result.Error = "failed to store segments"
		s.pushResult(ctx, redisKey, result)
		return
	}

	result.Status = "done"
	result.Segments = segments
	s.pushResult(ctx, redisKey, result)

	// Synchronous publish: the goroutine exits right after, so an async
	// publish could be dropped before the broker ack.
	if s.events != nil {
		if err := s.events.Publish(ctx, result, map[string]string{
			"event":     "lesson.transcribed",
			"lesson_id": lesson.ID.String(),
		}); err != nil {
			s.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to publish transcription event")
		}
	}

	s.log.Info().
		Str("job_id", jobID).
		Int("segments", len(segments)).
		Str("language", transcription.Language).
		Msg("Transcription complete, result pushed to Redis")
}

func (s *TranscriptService) pushResult(ctx context.Context, key string, result TranscriptJobResult) {
	if err := s.redisClient.RPush(ctx, key, result); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to push result to Redis")
		return
	}
	if err := s.redisClient.SetExpiry(ctx, key, transcriptResultTTL); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to set Redis key expiry")
	}
}

// GetResult waits for a transcription job result using BLPOP. This is the
// CONSUMER side; it returns a timeout error when the job has not landed
// within the configured wait. BLPOP consumes the result, so ownership of the
// lesson is checked before touching the queue.
func (s *TranscriptService) GetResult(ctx context.Context, userID, lessonID uuid.UUID, jobID string) (*TranscriptJobResult, error) {
	if _, err := s.lessonService.GetLesson(ctx, userID, lessonID); err != nil {
		return nil, err
	}

	if s.redisClient == nil {
		return nil, errors.New(errors.ErrSpeechService, "redis client not configured")
	}

	redisKey := transcriptResultKeyPrefix + jobID

	data, err := s.redisClient.BLPop(ctx, s.resultTimeout, redisKey)
	if err != nil {
		if err == redis.Nil {
			return nil, errors.Timeout("transcript not ready, please try again")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "failed to get result from Redis", err)
	}

	var result TranscriptJobResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "failed to parse job result", err)
	}

	// A job id from a different lesson must not leak its result; put it back
	// for the rightful consumer.
	if result.LessonID != lessonID.String() {
		s.pushResult(ctx, redisKey, result)
		return nil, errors.NotFound("transcript job")
	}

	return &result, nil
}
