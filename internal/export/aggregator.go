// Package export tracks which study materials are selected for export and
// supervises the export job started from that selection.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"studykit/internal/domain"
	"studykit/internal/progress"

	"go.uber.org/zap"
)

type activeJob struct {
	job  domain.ExportJob
	task *progress.Task
	// finished is closed after the selection and observer have seen the outcome.
	finished chan struct{}
}

// Aggregator owns the selection over a list of exportable items.
// At most one export job runs at a time; a second start is rejected.
type Aggregator struct {
	mu       sync.Mutex
	items    []domain.ExportableItem
	index    map[string]int
	selected map[string]struct{}
	job      *activeJob

	scheduler      progress.Scheduler
	clearOnSuccess bool
	preselected    []string
	now            func() time.Time
	logger         *zap.Logger
	observer       func(domain.ExportJob)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPreselected seeds the selection. Unknown ids fail construction.
func WithPreselected(ids ...string) Option {
	return func(a *Aggregator) {
		a.preselected = append(a.preselected, ids...)
	}
}

// WithClearOnSuccess empties the selection once an export succeeds.
func WithClearOnSuccess(clear bool) Option {
	return func(a *Aggregator) {
		a.clearOnSuccess = clear
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock replaces time.Now for job timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithJobObserver is called once per job after it reaches a terminal state.
func WithJobObserver(f func(domain.ExportJob)) Option {
	return func(a *Aggregator) {
		a.observer = f
	}
}

// NewAggregator creates an Aggregator with an empty selection unless preselected ids are given.
func NewAggregator(items []domain.ExportableItem, scheduler progress.Scheduler, opts ...Option) (*Aggregator, error) {
	if scheduler == nil {
		scheduler = progress.NewSimulator(progress.Config{})
	}
	a := &Aggregator{
		selected:  make(map[string]struct{}),
		scheduler: scheduler,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.replaceItems(items); err != nil {
		return nil, err
	}
	for _, id := range a.preselected {
		if _, ok := a.index[id]; !ok {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("preselected item %s is not in the item list", id)).
				WithContext("item_id", id)
		}
		a.selected[a.items[a.index[id]].ID] = struct{}{}
	}
	return a, nil
}

func (a *Aggregator) replaceItems(items []domain.ExportableItem) error {
	index := make(map[string]int, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := index[item.ID]; dup {
			return domain.NewInvalidInputError(fmt.Sprintf("duplicate item id %s", item.ID)).
				WithContext("item_id", item.ID)
		}
		index[item.ID] = i
	}
	a.items = make([]domain.ExportableItem, len(items))
	copy(a.items, items)
	a.index = index
	return nil
}

// SetItems replaces the known items and drops selections that no longer resolve.
func (a *Aggregator) SetItems(items []domain.ExportableItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.replaceItems(items); err != nil {
		return err
	}
	for id := range a.selected {
		if _, ok := a.index[id]; !ok {
			delete(a.selected, id)
			a.logger.Debug("Dropped selection of removed item", zap.String("item_id", id))
		}
	}
	return nil
}

// Toggle flips the selection of one item.
func (a *Aggregator) Toggle(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[id]
	if !ok {
		return domain.NewItemNotFoundError(id)
	}
	// Key by the item's own id: id may alias a buffer the caller reuses.
	key := a.items[i].ID
	if _, ok := a.selected[key]; ok {
		delete(a.selected, key)
	} else {
		a.selected[key] = struct{}{}
	}
	return nil
}

// SelectAll selects every known item.
func (a *Aggregator) SelectAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectAllLocked()
}

// ClearAll empties the selection.
func (a *Aggregator) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selected = make(map[string]struct{})
}

// ToggleAll clears a full selection and otherwise selects everything,
// matching a single "select all" checkbox.
func (a *Aggregator) ToggleAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.allSelectedLocked() {
		a.selected = make(map[string]struct{})
		return
	}
	a.selectAllLocked()
}

// AllSelected reports whether every item is selected. It is false for an empty item list.
func (a *Aggregator) AllSelected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allSelectedLocked()
}

// IsSelected reports whether id is selected.
func (a *Aggregator) IsSelected(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.selected[id]
	return ok
}

// Selected returns the selected ids in item order.
func (a *Aggregator) Selected() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedLocked()
}

// SelectedCount returns the number of selected items.
func (a *Aggregator) SelectedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.selected)
}

// TotalSize sums the sizes of the selected items.
func (a *Aggregator) TotalSize() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalSizeLocked()
}

// CanExport reports whether at least one item is selected.
func (a *Aggregator) CanExport() bool {
	return a.SelectedCount() > 0
}

// Items returns the known items.
func (a *Aggregator) Items() []domain.ExportableItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ExportableItem, len(a.items))
	copy(out, a.items)
	return out
}

// StartExport snapshots the selection and starts a job on the scheduler.
// ctx bounds the job, so it must outlive the caller's request.
func (a *Aggregator) StartExport(ctx context.Context, report progress.ReportFunc) (domain.ExportJob, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.selected) == 0 {
		return domain.ExportJob{}, domain.NewValidationError("select at least one item")
	}
	if a.job != nil && !a.job.task.Snapshot().State.Terminal() {
		return domain.ExportJob{}, domain.NewInvalidStateError("export already in progress").
			WithContext("job_id", a.job.job.ID)
	}

	task := a.scheduler.Start(ctx, report)
	aj := &activeJob{
		job: domain.ExportJob{
			ID:        task.ID(),
			ItemIDs:   a.selectedLocked(),
			TotalSize: a.totalSizeLocked(),
			State:     domain.JobPending,
			StartedAt: a.now(),
		},
		task:     task,
		finished: make(chan struct{}),
	}
	a.job = aj

	a.logger.Info("Export started",
		zap.String("job_id", aj.job.ID),
		zap.Strings("item_ids", aj.job.ItemIDs),
		zap.Float64("total_size_mb", aj.job.TotalSize),
	)

	go a.watch(aj)
	return jobView(aj), nil
}

// CancelExport cancels the running job.
func (a *Aggregator) CancelExport() (domain.ExportJob, error) {
	a.mu.Lock()
	aj := a.job
	a.mu.Unlock()

	if aj == nil {
		return domain.ExportJob{}, domain.NewNotFoundError("no export job to cancel")
	}
	if !aj.task.Cancel() {
		return jobView(aj), domain.NewInvalidStateError("export job already finished").
			WithContext("job_id", aj.job.ID)
	}
	a.logger.Info("Export cancelled", zap.String("job_id", aj.job.ID))
	return jobView(aj), nil
}

// Job returns the latest export job.
func (a *Aggregator) Job() (domain.ExportJob, bool) {
	a.mu.Lock()
	aj := a.job
	a.mu.Unlock()
	if aj == nil {
		return domain.ExportJob{}, false
	}
	return jobView(aj), true
}

// Wait blocks until the current job finishes and its outcome has been applied
// to the selection and handed to the job observer.
func (a *Aggregator) Wait(ctx context.Context) (domain.JobState, error) {
	a.mu.Lock()
	aj := a.job
	a.mu.Unlock()
	if aj == nil {
		return "", domain.NewNotFoundError("no export job")
	}
	select {
	case <-aj.finished:
		return aj.task.Snapshot().State, nil
	case <-ctx.Done():
		return aj.task.Snapshot().State, ctx.Err()
	}
}

// Snapshot returns a copy of the selection and derived totals.
func (a *Aggregator) Snapshot() domain.ExportSnapshot {
	a.mu.Lock()
	items := make([]domain.ExportableItem, len(a.items))
	copy(items, a.items)
	snap := domain.ExportSnapshot{
		Items:         items,
		Selected:      a.selectedLocked(),
		SelectedCount: len(a.selected),
		AllSelected:   a.allSelectedLocked(),
		TotalSize:     a.totalSizeLocked(),
		CanExport:     len(a.selected) > 0,
	}
	aj := a.job
	a.mu.Unlock()

	if aj != nil {
		job := jobView(aj)
		snap.Job = &job
	}
	return snap
}

// Close cancels a running job. The view is being torn down.
func (a *Aggregator) Close() {
	a.mu.Lock()
	aj := a.job
	a.mu.Unlock()
	if aj != nil {
		aj.task.Cancel()
	}
}

func (a *Aggregator) watch(aj *activeJob) {
	defer close(aj.finished)
	<-aj.task.Done()
	state := aj.task.Snapshot().State
	a.logger.Info("Export finished", zap.String("job_id", aj.job.ID), zap.String("state", string(state)))

	if state == domain.JobSucceeded && a.clearOnSuccess {
		a.mu.Lock()
		if a.job == aj {
			a.selected = make(map[string]struct{})
		}
		a.mu.Unlock()
	}
	if a.observer != nil {
		a.observer(jobView(aj))
	}
}

func (a *Aggregator) selectAllLocked() {
	for _, item := range a.items {
		a.selected[item.ID] = struct{}{}
	}
}

func (a *Aggregator) allSelectedLocked() bool {
	return len(a.items) > 0 && len(a.selected) == len(a.items)
}

func (a *Aggregator) selectedLocked() []string {
	ids := make([]string, 0, len(a.selected))
	for _, item := range a.items {
		if _, ok := a.selected[item.ID]; ok {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func (a *Aggregator) totalSizeLocked() float64 {
	var total float64
	for _, item := range a.items {
		if _, ok := a.selected[item.ID]; ok {
			total += item.SizeMB
		}
	}
	return total
}

func jobView(aj *activeJob) domain.ExportJob {
	job := aj.job
	job.ItemIDs = append([]string(nil), aj.job.ItemIDs...)
	snap := aj.task.Snapshot()
	job.State = snap.State
	job.Progress = snap.Progress
	return job
}
