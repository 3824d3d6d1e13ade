package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/export"
	"studykit/internal/progress"
	"studykit/internal/util"

	"go.uber.org/zap"
)

// ExportService hosts one export selection per UI session.
type ExportService interface {
	OpenSession(ctx context.Context, preselected []string) (*dto.ExportSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ToggleItem(ctx context.Context, sessionID, itemID string) (*dto.ExportSessionResponse, error)
	SelectAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ClearAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ToggleAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	StartExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CurrentJob(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CancelExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CloseSession(ctx context.Context, sessionID string) error
	Shutdown()
}

type exportSession struct {
	id        string
	ctx       context.Context
	cancel    context.CancelFunc
	agg       *export.Aggregator
	closeOnce sync.Once
}

type exportService struct {
	catalog        domain.MaterialCatalog
	scheduler      progress.Scheduler
	board          JobBoard
	clearOnSuccess bool
	logger         *zap.Logger
	sessions       *registry[*exportSession]
	idleTTL        time.Duration
	reaper         *reaper
}

// NewExportService creates a new instance of exportService
func NewExportService(
	catalog domain.MaterialCatalog,
	scheduler progress.Scheduler,
	board JobBoard,
	clearOnSuccess bool,
	log *zap.Logger,
	opts ...SessionOption,
) ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	if board == nil {
		board = &noopJobBoard{}
	}
	o := applySessionOptions(opts)
	s := &exportService{
		catalog:        catalog,
		scheduler:      scheduler,
		board:          board,
		clearOnSuccess: clearOnSuccess,
		logger:         log,
		sessions:       newRegistry[*exportSession]("export"),
		idleTTL:        o.idleTTL,
	}
	s.reaper = startReaper(o.idleTTL, s.reapIdle)
	return s
}

// OpenSession loads the catalog into a fresh selection.
func (s *exportService) OpenSession(ctx context.Context, preselected []string) (*dto.ExportSessionResponse, error) {
	items, err := s.catalog.ListMaterials(ctx)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to list exportable materials", err)
	}

	id := util.NewULID()
	agg, err := export.NewAggregator(items, s.scheduler,
		export.WithPreselected(preselected...),
		export.WithClearOnSuccess(s.clearOnSuccess),
		export.WithLogger(s.logger.With(zap.String("session_id", id))),
		export.WithJobObserver(func(job domain.ExportJob) {
			publish(s.board, s.logger, domain.JobRecord{
				ID:       job.ID,
				Kind:     JobKindExport,
				OwnerID:  id,
				Progress: job.Progress,
				State:    job.State,
			})
		}),
	)
	if err != nil {
		return nil, err
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &exportSession{id: id, ctx: sessCtx, cancel: cancel, agg: agg}
	s.sessions.put(id, sess)

	s.logger.Info("Export session opened",
		zap.String("session_id", id),
		zap.Int("items", len(items)),
		zap.Int("preselected", len(preselected)),
	)
	return dto.NewExportSessionResponse(id, agg.Snapshot()), nil
}

func (s *exportService) GetSession(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewExportSessionResponse(sess.id, sess.agg.Snapshot()), nil
}

func (s *exportService) ToggleItem(ctx context.Context, sessionID, itemID string) (*dto.ExportSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.agg.Toggle(itemID); err != nil {
		s.logger.Warn("Export toggle rejected",
			zap.String("session_id", sessionID),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return nil, err
	}
	return dto.NewExportSessionResponse(sess.id, sess.agg.Snapshot()), nil
}

func (s *exportService) SelectAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	return s.apply(sessionID, (*export.Aggregator).SelectAll)
}

func (s *exportService) ClearAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	return s.apply(sessionID, (*export.Aggregator).ClearAll)
}

func (s *exportService) ToggleAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	return s.apply(sessionID, (*export.Aggregator).ToggleAll)
}

// StartExport starts a job bound to the session, not to the request.
func (s *exportService) StartExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	job, err := sess.agg.StartExport(sess.ctx, reporter(s.board, s.logger, JobKindExport, sess.id))
	if err != nil {
		s.logger.Warn("Export start rejected", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return dto.NewExportJobResponse(job), nil
}

func (s *exportService) CurrentJob(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	job, ok := sess.agg.Job()
	if !ok {
		return nil, domain.NewNotFoundError("no export job").WithContext("session_id", sessionID)
	}
	return dto.NewExportJobResponse(job), nil
}

func (s *exportService) CancelExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	job, err := sess.agg.CancelExport()
	if err != nil {
		return nil, err
	}
	return dto.NewExportJobResponse(job), nil
}

func (s *exportService) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.remove(sessionID)
	if err != nil {
		return err
	}
	sess.close()
	s.logger.Info("Export session closed", zap.String("session_id", sessionID))
	return nil
}

func (s *exportService) Shutdown() {
	s.reaper.Stop()
	sessions := s.sessions.drain()
	for _, sess := range sessions {
		sess.close()
	}
	if len(sessions) > 0 {
		s.logger.Info("Export sessions closed on shutdown", zap.Int("count", len(sessions)))
	}
}

// reapIdle closes sessions abandoned without a DELETE, cancelling their jobs.
func (s *exportService) reapIdle() {
	if s.idleTTL <= 0 {
		return
	}
	idle := s.sessions.removeIdle(s.idleTTL)
	for _, sess := range idle {
		sess.close()
	}
	if len(idle) > 0 {
		s.logger.Info("Idle export sessions closed", zap.Int("count", len(idle)), zap.Duration("idle_ttl", s.idleTTL))
	}
}

func (s *exportService) apply(sessionID string, op func(*export.Aggregator)) (*dto.ExportSessionResponse, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}
	op(sess.agg)
	return dto.NewExportSessionResponse(sess.id, sess.agg.Snapshot()), nil
}

func (e *exportSession) close() {
	e.closeOnce.Do(func() {
		e.agg.Close()
		e.cancel()
	})
}
