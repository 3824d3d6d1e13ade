package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studykit/internal/cache"
	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/logger"

	"go.uber.org/zap"
)

// Job kinds published on the board.
const (
	JobKindExport         = "export"
	JobKindQuizGeneration = "quiz_generation"
	JobKindSummary        = "summary"
)

const (
	activeJobTTL   = 10 * time.Minute
	publishTimeout = time.Second
)

// JobBoard publishes task progress so any instance can answer polls.
type JobBoard interface {
	Publish(ctx context.Context, record domain.JobRecord) error
	Lookup(ctx context.Context, jobID string) (*dto.JobResponse, error)
}

type cacheJobBoard struct {
	cache       domain.Cache
	terminalTTL time.Duration
	now         func() time.Time
}

// NewJobBoard creates a JobBoard on top of a cache. Finished jobs stay visible for terminalTTL.
func NewJobBoard(c domain.Cache, terminalTTL time.Duration) JobBoard {
	if c == nil {
		logger.Get().Warn("JobBoard initialized with nil cache. Service will be no-op.")
		return &noopJobBoard{}
	}
	return &cacheJobBoard{cache: c, terminalTTL: terminalTTL, now: time.Now}
}

func (b *cacheJobBoard) Publish(ctx context.Context, record domain.JobRecord) error {
	if record.ID == "" {
		return domain.NewInvalidInputError("cannot publish a job without id")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = b.now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.NewInternalError("failed to marshal job record", err)
	}

	ttl := activeJobTTL
	if record.State.Terminal() {
		ttl = b.terminalTTL
	}
	key := cache.JobRecordKey(record.ID)
	if err := b.cache.Set(ctx, key, string(data), ttl); err != nil {
		logger.Get().Error("Failed to publish job record", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to publish job record for key %s", key), err)
	}
	return nil
}

func (b *cacheJobBoard) Lookup(ctx context.Context, jobID string) (*dto.JobResponse, error) {
	key := cache.JobRecordKey(jobID)
	data, err := b.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("job not found: %s", jobID)).WithContext("job_id", jobID)
		}
		logger.Get().Error("Failed to read job record", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read job record for key %s", key), err)
	}

	var record domain.JobRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal job record for key %s", key), err)
	}
	return dto.NewJobResponse(record), nil
}

// reporter builds a progress callback that mirrors values onto the board.
func reporter(board JobBoard, log *zap.Logger, kind, ownerID string) func(taskID string, progress int) {
	return func(taskID string, progress int) {
		publish(board, log, domain.JobRecord{
			ID:       taskID,
			Kind:     kind,
			OwnerID:  ownerID,
			Progress: progress,
			State:    domain.JobRunning,
		})
	}
}

func publish(board JobBoard, log *zap.Logger, record domain.JobRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := board.Publish(ctx, record); err != nil {
		log.Warn("Job board publish failed",
			zap.String("job_id", record.ID),
			zap.String("kind", record.Kind),
			zap.Error(err),
		)
	}
}

// noopJobBoard is used when no cache is available.
type noopJobBoard struct{}

func (b *noopJobBoard) Publish(ctx context.Context, record domain.JobRecord) error {
	return nil
}

func (b *noopJobBoard) Lookup(ctx context.Context, jobID string) (*dto.JobResponse, error) {
	return nil, domain.NewNotFoundError(fmt.Sprintf("job not found: %s", jobID))
}
