package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/progress"
	"studykit/internal/quiz"
	"studykit/internal/util"

	"go.uber.org/zap"
)

// QuizService hosts one quiz engine per UI session, from generation to result.
type QuizService interface {
	StartGeneration(ctx context.Context, videoURL string) (*dto.QuizSessionResponse, error)
	Regenerate(ctx context.Context, sessionID, videoURL string) (*dto.QuizSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	SelectAnswer(ctx context.Context, sessionID string, optionIndex int) (*dto.QuizSessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	Advance(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	Reset(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	GetResult(ctx context.Context, sessionID string) (*dto.QuizResultResponse, error)
	CloseSession(ctx context.Context, sessionID string) error
	Shutdown()
}

type quizSession struct {
	id string

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	videoURL string
	status   string
	failure  string
	task     *progress.Task
	engine   *quiz.Engine
	closed   bool

	revealTimer timer
	revealSeq   uint64
}

type timer interface {
	Stop() bool
}

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

type quizService struct {
	source      domain.QuestionSource
	scheduler   progress.Scheduler
	board       JobBoard
	revealDelay time.Duration
	afterFunc   func(time.Duration, func()) timer
	logger      *zap.Logger
	sessions    *registry[*quizSession]
	idleTTL     time.Duration
	reaper      *reaper
}

// NewQuizService creates a new instance of quizService.
// A revealDelay of zero leaves advancing to the caller.
func NewQuizService(
	source domain.QuestionSource,
	scheduler progress.Scheduler,
	board JobBoard,
	revealDelay time.Duration,
	log *zap.Logger,
	opts ...SessionOption,
) QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	if board == nil {
		board = &noopJobBoard{}
	}
	o := applySessionOptions(opts)
	s := &quizService{
		source:      source,
		scheduler:   scheduler,
		board:       board,
		revealDelay: revealDelay,
		afterFunc:   realAfterFunc,
		logger:      log,
		sessions:    newRegistry[*quizSession]("quiz"),
		idleTTL:     o.idleTTL,
	}
	s.reaper = startReaper(o.idleTTL, s.reapIdle)
	return s
}

// StartGeneration opens a session and starts generating its quiz.
// The session outlives ctx; it ends with CloseSession or Shutdown.
func (s *quizService) StartGeneration(ctx context.Context, videoURL string) (*dto.QuizSessionResponse, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, domain.NewValidationError("video url is required")
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &quizSession{
		id:       util.NewULID(),
		ctx:      sessCtx,
		cancel:   cancel,
		videoURL: videoURL,
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.startGenerationLocked(sess)
	s.sessions.put(sess.id, sess)

	s.logger.Info("Quiz generation started",
		zap.String("session_id", sess.id),
		zap.String("video_url", videoURL),
		zap.String("task_id", sess.task.ID()),
	)
	return s.toResponse(sess), nil
}

// Regenerate supersedes the running generation. An empty videoURL keeps the current one.
func (s *quizService) Regenerate(ctx context.Context, sessionID, videoURL string) (*dto.QuizSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.requireOpen(sess); err != nil {
		return nil, err
	}

	previous := sess.task
	if previous != nil && previous.Cancel() {
		s.logger.Info("Quiz generation superseded",
			zap.String("session_id", sess.id),
			zap.String("task_id", previous.ID()),
		)
	}
	if strings.TrimSpace(videoURL) != "" {
		sess.videoURL = videoURL
	}
	s.startGenerationLocked(sess)
	return s.toResponse(sess), nil
}

func (s *quizService) GetSession(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.toResponse(sess), nil
}

func (s *quizService) SelectAnswer(ctx context.Context, sessionID string, optionIndex int) (*dto.QuizSessionResponse, error) {
	return s.mutate(sessionID, "select_answer", func(sess *quizSession) error {
		return sess.engine.SelectAnswer(optionIndex)
	})
}

// SubmitAnswer grades the selection and, when configured, schedules the advance.
func (s *quizService) SubmitAnswer(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	return s.mutate(sessionID, "submit_answer", func(sess *quizSession) error {
		outcome, err := sess.engine.SubmitAnswer()
		if err != nil {
			return err
		}
		s.logger.Debug("Answer submitted",
			zap.String("session_id", sess.id),
			zap.Int("question_index", outcome.QuestionIndex),
			zap.Bool("correct", outcome.Correct),
		)
		s.scheduleAdvanceLocked(sess)
		return nil
	})
}

func (s *quizService) Advance(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	return s.mutate(sessionID, "advance", func(sess *quizSession) error {
		if err := sess.engine.Advance(); err != nil {
			return err
		}
		stopRevealLocked(sess)
		return nil
	})
}

func (s *quizService) Reset(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	return s.mutate(sessionID, "reset", func(sess *quizSession) error {
		stopRevealLocked(sess)
		sess.engine.Reset()
		return nil
	})
}

func (s *quizService) GetResult(ctx context.Context, sessionID string) (*dto.QuizResultResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.requireReady(sess); err != nil {
		return nil, err
	}
	result, err := sess.engine.Result()
	if err != nil {
		return nil, err
	}
	return dto.NewQuizResultResponse(result), nil
}

// CloseSession tears the session down, cancelling its generation and reveal timer.
func (s *quizService) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.remove(sessionID)
	if err != nil {
		return err
	}
	s.closeSession(sess)
	s.logger.Info("Quiz session closed", zap.String("session_id", sessionID))
	return nil
}

func (s *quizService) Shutdown() {
	s.reaper.Stop()
	sessions := s.sessions.drain()
	for _, sess := range sessions {
		s.closeSession(sess)
	}
	if len(sessions) > 0 {
		s.logger.Info("Quiz sessions closed on shutdown", zap.Int("count", len(sessions)))
	}
}

// reapIdle closes sessions abandoned without a DELETE.
func (s *quizService) reapIdle() {
	if s.idleTTL <= 0 {
		return
	}
	idle := s.sessions.removeIdle(s.idleTTL)
	for _, sess := range idle {
		s.closeSession(sess)
	}
	if len(idle) > 0 {
		s.logger.Info("Idle quiz sessions closed", zap.Int("count", len(idle)), zap.Duration("idle_ttl", s.idleTTL))
	}
}

func (s *quizService) closeSession(sess *quizSession) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	stopRevealLocked(sess)
	if sess.task != nil {
		sess.task.Cancel()
	}
	sess.cancel()
}

func (s *quizService) mutate(sessionID, op string, apply func(sess *quizSession) error) (*dto.QuizSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := s.requireReady(sess); err != nil {
		return nil, err
	}
	if err := apply(sess); err != nil {
		s.logger.Warn("Quiz operation rejected",
			zap.String("session_id", sess.id),
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil, err
	}
	return s.toResponse(sess), nil
}

func (s *quizService) requireOpen(sess *quizSession) error {
	if sess.closed {
		return domain.NewNotFoundError(fmt.Sprintf("quiz session not found: %s", sess.id)).
			WithContext("session_id", sess.id)
	}
	return nil
}

func (s *quizService) requireReady(sess *quizSession) error {
	if err := s.requireOpen(sess); err != nil {
		return err
	}
	switch sess.status {
	case dto.QuizStatusReady:
		return nil
	case dto.QuizStatusFailed:
		return domain.NewInvalidStateError("quiz generation failed").
			WithContext("session_id", sess.id)
	default:
		return domain.NewInvalidStateError("quiz is still generating").
			WithContext("session_id", sess.id)
	}
}

func (s *quizService) startGenerationLocked(sess *quizSession) {
	stopRevealLocked(sess)
	sess.status = dto.QuizStatusGenerating
	sess.failure = ""
	sess.engine = nil

	task := s.scheduler.Start(sess.ctx, reporter(s.board, s.logger, JobKindQuizGeneration, sess.id))
	sess.task = task
	go s.awaitGeneration(sess, task)
}

// awaitGeneration loads the questions once the generation task succeeds.
// A superseded or cancelled task leaves the session untouched.
func (s *quizService) awaitGeneration(sess *quizSession, task *progress.Task) {
	<-task.Done()
	snap := task.Snapshot()
	publish(s.board, s.logger, domain.JobRecord{
		ID:       snap.ID,
		Kind:     JobKindQuizGeneration,
		OwnerID:  sess.id,
		Progress: snap.Progress,
		State:    snap.State,
	})
	if snap.State != domain.JobSucceeded {
		return
	}

	sess.mu.Lock()
	videoURL := sess.videoURL
	sess.mu.Unlock()

	questions, loadErr := s.source.QuestionsForVideo(sess.ctx, videoURL)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.task != task {
		return
	}
	if loadErr != nil {
		s.failLocked(sess, loadErr)
		return
	}
	engine, err := quiz.NewEngine(questions)
	if err != nil {
		s.failLocked(sess, err)
		return
	}
	sess.engine = engine
	sess.status = dto.QuizStatusReady
	s.logger.Info("Quiz ready",
		zap.String("session_id", sess.id),
		zap.Int("questions", len(questions)),
	)
}

func (s *quizService) failLocked(sess *quizSession, err error) {
	sess.status = dto.QuizStatusFailed
	sess.failure = err.Error()
	s.logger.Error("Quiz generation failed",
		zap.String("session_id", sess.id),
		zap.String("video_url", sess.videoURL),
		zap.Error(err),
	)
}

func (s *quizService) scheduleAdvanceLocked(sess *quizSession) {
	if s.revealDelay <= 0 {
		return
	}
	stopRevealLocked(sess)
	seq := sess.revealSeq
	sess.revealTimer = s.afterFunc(s.revealDelay, func() {
		s.autoAdvance(sess, seq)
	})
}

func (s *quizService) autoAdvance(sess *quizSession, seq uint64) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed || sess.revealSeq != seq || sess.engine == nil {
		return
	}
	if sess.engine.Phase() != domain.PhaseRevealed {
		return
	}
	sess.revealTimer = nil
	if err := sess.engine.Advance(); err != nil {
		s.logger.Error("Auto-advance failed", zap.String("session_id", sess.id), zap.Error(err))
		return
	}
	s.logger.Debug("Quiz auto-advanced",
		zap.String("session_id", sess.id),
		zap.Int("question_index", sess.engine.Snapshot().QuestionIndex),
	)
}

// stopRevealLocked invalidates any pending auto-advance. A timer that already
// fired sees the bumped sequence and does nothing.
func stopRevealLocked(sess *quizSession) {
	sess.revealSeq++
	if sess.revealTimer != nil {
		sess.revealTimer.Stop()
		sess.revealTimer = nil
	}
}

func (s *quizService) toResponse(sess *quizSession) *dto.QuizSessionResponse {
	resp := &dto.QuizSessionResponse{
		SessionID: sess.id,
		VideoURL:  sess.videoURL,
		Status:    sess.status,
		Error:     sess.failure,
	}
	if sess.task != nil {
		snap := sess.task.Snapshot()
		resp.Generation = &dto.JobProgressResponse{
			ID:       snap.ID,
			State:    string(snap.State),
			Progress: snap.Progress,
		}
	}
	if sess.engine != nil {
		resp.Quiz = dto.NewQuizStateResponse(sess.engine.Snapshot())
	}
	return resp
}
