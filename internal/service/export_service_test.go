package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"studykit/internal/adapter"
	"studykit/internal/adapter/mockcontent"
	"studykit/internal/domain"
	"studykit/internal/progress"
	"studykit/internal/progress/progresstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var catalogTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type exportFixture struct {
	svc     ExportService
	clock   *progresstest.Clock
	board   JobBoard
	catalog *MockMaterialCatalog
}

func newExportFixture(t *testing.T, clearOnSuccess bool) *exportFixture {
	t.Helper()
	clock := &progresstest.Clock{}
	sim := progress.NewSimulator(progress.Config{Step: 10, Interval: time.Second}, progress.WithTicker(clock.NewTicker))
	board := NewJobBoard(adapter.NewMemoryCacheAdapter(), time.Minute)
	catalog := new(MockMaterialCatalog)
	catalog.On("ListMaterials", mock.Anything).Return(mockcontent.DefaultMaterials(catalogTime), nil).Maybe()
	svc := NewExportService(catalog, sim, board, clearOnSuccess, zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return &exportFixture{svc: svc, clock: clock, board: board, catalog: catalog}
}

func TestExportService_OpenSession(t *testing.T) {
	f := newExportFixture(t, false)

	resp, err := f.svc.OpenSession(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.Items, 5)
	assert.Empty(t, resp.Selected)
	assert.Equal(t, 0, resp.SelectedCount)
	assert.False(t, resp.CanExport)
	assert.Equal(t, "0.0 MB", resp.TotalSizeLabel)
	assert.Nil(t, resp.Job)
	assert.Equal(t, "Complete Package", resp.Items[3].CategoryLabel)

	f.catalog.AssertNumberOfCalls(t, "ListMaterials", 1)
}

func TestExportService_OpenSessionPreselected(t *testing.T) {
	f := newExportFixture(t, false)

	resp, err := f.svc.OpenSession(context.Background(), []string{"quiz-react-hooks", "package-cs229"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz-react-hooks", "package-cs229"}, resp.Selected)
	assert.InDelta(t, 3.9, resp.TotalSize, 1e-9)
	assert.Equal(t, "3.9 MB", resp.TotalSizeLabel)
	assert.True(t, resp.CanExport)

	_, err = f.svc.OpenSession(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExportService_CatalogFailure(t *testing.T) {
	catalog := new(MockMaterialCatalog)
	catalog.On("ListMaterials", mock.Anything).Return(nil, errors.New("backend down")).Once()
	svc := NewExportService(catalog, progress.NewSimulator(progress.Config{}), nil, false, nil)

	_, err := svc.OpenSession(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInternal)
	catalog.AssertExpectations(t)
}

func TestExportService_Selection(t *testing.T) {
	f := newExportFixture(t, false)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, nil)
	require.NoError(t, err)
	id := open.SessionID

	resp, err := f.svc.ToggleItem(ctx, id, "summary-react-hooks")
	require.NoError(t, err)
	assert.Equal(t, []string{"summary-react-hooks"}, resp.Selected)
	assert.True(t, resp.Items[0].Selected)
	assert.Equal(t, "1.1 MB", resp.TotalSizeLabel)

	_, err = f.svc.ToggleItem(ctx, id, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err = f.svc.SelectAll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.SelectedCount)
	assert.True(t, resp.AllSelected)
	assert.Equal(t, "7.0 MB", resp.TotalSizeLabel)

	resp, err = f.svc.ToggleAll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.SelectedCount)

	resp, err = f.svc.ToggleAll(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.AllSelected)

	resp, err = f.svc.ClearAll(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, resp.Selected)
	assert.False(t, resp.CanExport)

	_, err = f.svc.SelectAll(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportService_ExportSucceeds(t *testing.T) {
	f := newExportFixture(t, true)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, []string{"flashcards-react-hooks"})
	require.NoError(t, err)
	id := open.SessionID

	job, err := f.svc.StartExport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"flashcards-react-hooks"}, job.ItemIDs)
	assert.InDelta(t, 0.8, job.TotalSize, 1e-9)

	_, err = f.svc.StartExport(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "only one export at a time")

	ticker := f.clock.Last()
	for i := 0; i < 5; i++ {
		require.True(t, ticker.Tick())
	}
	require.Eventually(t, func() bool {
		record, err := f.board.Lookup(ctx, job.ID)
		return err == nil && record.Progress == 50 && record.State == "running"
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.True(t, ticker.Tick())
	}
	require.Eventually(t, func() bool {
		record, err := f.board.Lookup(ctx, job.ID)
		return err == nil && record.State == "succeeded"
	}, time.Second, 5*time.Millisecond)

	record, err := f.board.Lookup(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobKindExport, record.Kind)
	assert.Equal(t, id, record.OwnerID)
	assert.Equal(t, 0, record.Progress)

	current, err := f.svc.CurrentJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", current.State)

	session, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, session.Selected, "clear on success empties the selection")
}

func TestExportService_StartExportRequiresSelection(t *testing.T) {
	f := newExportFixture(t, false)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, nil)
	require.NoError(t, err)

	_, err = f.svc.StartExport(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.clock.Count())

	_, err = f.svc.CurrentJob(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.CancelExport(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportService_CancelExport(t *testing.T) {
	f := newExportFixture(t, false)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, []string{"package-cs229"})
	require.NoError(t, err)

	job, err := f.svc.StartExport(ctx, open.SessionID)
	require.NoError(t, err)
	require.True(t, f.clock.Last().Tick())

	cancelled, err := f.svc.CancelExport(ctx, open.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.State)

	require.Eventually(t, func() bool {
		record, err := f.board.Lookup(ctx, job.ID)
		return err == nil && record.State == "cancelled"
	}, time.Second, 5*time.Millisecond)

	_, err = f.svc.CancelExport(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	session, err := f.svc.GetSession(ctx, open.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"package-cs229"}, session.Selected)

	next, err := f.svc.StartExport(ctx, open.SessionID)
	require.NoError(t, err, "a new export may start after cancellation")
	assert.NotEqual(t, job.ID, next.ID)
}

func TestExportService_CloseSessionCancelsJob(t *testing.T) {
	f := newExportFixture(t, false)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, []string{"summary-python-ds"})
	require.NoError(t, err)

	job, err := f.svc.StartExport(ctx, open.SessionID)
	require.NoError(t, err)
	ticker := f.clock.Last()

	require.NoError(t, f.svc.CloseSession(ctx, open.SessionID))
	assert.True(t, ticker.WaitStopped(time.Second))

	require.Eventually(t, func() bool {
		record, err := f.board.Lookup(ctx, job.ID)
		return err == nil && record.State == "cancelled"
	}, time.Second, 5*time.Millisecond)

	_, err = f.svc.GetSession(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.CloseSession(ctx, open.SessionID), domain.ErrNotFound)
}

func TestExportService_Shutdown(t *testing.T) {
	f := newExportFixture(t, false)
	ctx := context.Background()
	open, err := f.svc.OpenSession(ctx, []string{"quiz-react-hooks"})
	require.NoError(t, err)
	_, err = f.svc.StartExport(ctx, open.SessionID)
	require.NoError(t, err)
	ticker := f.clock.Last()

	f.svc.Shutdown()
	assert.True(t, ticker.WaitStopped(time.Second))
	_, err = f.svc.GetSession(ctx, open.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportService_ReapsIdleSessions(t *testing.T) {
	clock := &progresstest.Clock{}
	sim := progress.NewSimulator(progress.Config{Step: 10, Interval: time.Second}, progress.WithTicker(clock.NewTicker))
	catalog := new(MockMaterialCatalog)
	catalog.On("ListMaterials", mock.Anything).Return(mockcontent.DefaultMaterials(catalogTime), nil)
	board := NewJobBoard(adapter.NewMemoryCacheAdapter(), time.Minute)
	svc := NewExportService(catalog, sim, board, false, zap.NewNop(), WithIdleTTL(time.Minute)).(*exportService)
	t.Cleanup(svc.Shutdown)

	now := catalogTime
	svc.sessions.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := svc.OpenSession(ctx, nil)
		require.NoError(t, err)
	}
	withJob, err := svc.OpenSession(ctx, []string{"package-cs229"})
	require.NoError(t, err)
	job, err := svc.StartExport(ctx, withJob.SessionID)
	require.NoError(t, err)
	ticker := clock.Last()
	assert.Equal(t, 51, svc.sessions.len())

	now = now.Add(59 * time.Second)
	svc.reapIdle()
	assert.Equal(t, 51, svc.sessions.len(), "nothing is idle before the ttl")

	now = now.Add(time.Second)
	svc.reapIdle()
	assert.Equal(t, 0, svc.sessions.len())
	assert.True(t, ticker.WaitStopped(time.Second), "reaping cancels the running export")
	require.Eventually(t, func() bool {
		record, err := board.Lookup(ctx, job.ID)
		return err == nil && record.State == "cancelled"
	}, time.Second, 5*time.Millisecond)

	_, err = svc.GetSession(ctx, withJob.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
