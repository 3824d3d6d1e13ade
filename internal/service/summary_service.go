package service

import (
	"context"
	"strings"

	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/progress"

	"go.uber.org/zap"
)

// SummaryService runs summary processing for videos. There is no session:
// clients poll the returned job on the job board.
type SummaryService interface {
	StartSummary(ctx context.Context, videoURL string) (*dto.JobProgressResponse, error)
	Shutdown()
}

type summaryService struct {
	scheduler progress.Scheduler
	board     JobBoard
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSummaryService creates a new instance of summaryService.
func NewSummaryService(scheduler progress.Scheduler, board JobBoard, log *zap.Logger) SummaryService {
	if log == nil {
		log = zap.NewNop()
	}
	if board == nil {
		board = &noopJobBoard{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &summaryService{
		scheduler: scheduler,
		board:     board,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// StartSummary starts a job that outlives the request. Shutdown cancels it.
func (s *summaryService) StartSummary(ctx context.Context, videoURL string) (*dto.JobProgressResponse, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, domain.NewValidationError("video url is required")
	}
	if s.ctx.Err() != nil {
		return nil, domain.NewInvalidStateError("summary service is shutting down")
	}

	task := s.scheduler.Start(s.ctx, reporter(s.board, s.logger, JobKindSummary, ""))
	s.logger.Info("Summary processing started",
		zap.String("task_id", task.ID()),
		zap.String("video_url", videoURL),
	)
	go s.await(task, videoURL)

	snap := task.Snapshot()
	return &dto.JobProgressResponse{ID: snap.ID, State: string(snap.State), Progress: snap.Progress}, nil
}

func (s *summaryService) await(task *progress.Task, videoURL string) {
	<-task.Done()
	snap := task.Snapshot()
	publish(s.board, s.logger, domain.JobRecord{
		ID:       snap.ID,
		Kind:     JobKindSummary,
		Progress: snap.Progress,
		State:    snap.State,
	})
	s.logger.Info("Summary processing finished",
		zap.String("task_id", snap.ID),
		zap.String("video_url", videoURL),
		zap.String("state", string(snap.State)),
	)
}

func (s *summaryService) Shutdown() {
	s.cancel()
}
