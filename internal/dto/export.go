package dto

import (
	"fmt"
	"time"

	"studykit/internal/domain"
)

// OpenExportRequest opens an export view, optionally with items pre-checked
type OpenExportRequest struct {
	Preselected []string `json:"preselected"`
}

// ExportItemResponse is one exportable material
type ExportItemResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	SizeMB        float64   `json:"size_mb"`
	CreatedAt     time.Time `json:"created_at"`
	Selected      bool      `json:"selected"`
}

// ExportJobResponse is the state of an export job
type ExportJobResponse struct {
	ID        string    `json:"id"`
	ItemIDs   []string  `json:"item_ids"`
	TotalSize float64   `json:"total_size_mb"`
	Progress  int       `json:"progress"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

// ExportSessionResponse is everything the export view renders
type ExportSessionResponse struct {
	SessionID      string               `json:"session_id"`
	Items          []ExportItemResponse `json:"items"`
	Selected       []string             `json:"selected"`
	SelectedCount  int                  `json:"selected_count"`
	AllSelected    bool                 `json:"all_selected"`
	TotalSize      float64              `json:"total_size_mb"`
	TotalSizeLabel string               `json:"total_size_label"`
	CanExport      bool                 `json:"can_export"`
	Job            *ExportJobResponse   `json:"job,omitempty"`
}

// JobResponse is a job board entry
type JobResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	Progress  int       `json:"progress"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormatSize renders a size the way the export view labels it.
func FormatSize(mb float64) string {
	return fmt.Sprintf("%.1f MB", mb)
}

// NewExportJobResponse maps a domain job
func NewExportJobResponse(j domain.ExportJob) *ExportJobResponse {
	return &ExportJobResponse{
		ID:        j.ID,
		ItemIDs:   j.ItemIDs,
		TotalSize: j.TotalSize,
		Progress:  j.Progress,
		State:     string(j.State),
		StartedAt: j.StartedAt,
	}
}

// NewExportSessionResponse maps a selection snapshot
func NewExportSessionResponse(sessionID string, s domain.ExportSnapshot) *ExportSessionResponse {
	selected := make(map[string]bool, len(s.Selected))
	for _, id := range s.Selected {
		selected[id] = true
	}
	items := make([]ExportItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = ExportItemResponse{
			ID:            item.ID,
			Title:         item.Title,
			Category:      string(item.Category),
			CategoryLabel: item.Category.Label(),
			SizeMB:        item.SizeMB,
			CreatedAt:     item.CreatedAt,
			Selected:      selected[item.ID],
		}
	}

	resp := &ExportSessionResponse{
		SessionID:      sessionID,
		Items:          items,
		Selected:       s.Selected,
		SelectedCount:  s.SelectedCount,
		AllSelected:    s.AllSelected,
		TotalSize:      s.TotalSize,
		TotalSizeLabel: FormatSize(s.TotalSize),
		CanExport:      s.CanExport,
	}
	if s.Job != nil {
		resp.Job = NewExportJobResponse(*s.Job)
	}
	return resp
}

// NewJobResponse maps a job board record
func NewJobResponse(r domain.JobRecord) *JobResponse {
	return &JobResponse{
		ID:        r.ID,
		Kind:      r.Kind,
		OwnerID:   r.OwnerID,
		Progress:  r.Progress,
		State:     string(r.State),
		UpdatedAt: r.UpdatedAt,
	}
}
