package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaterialCategory is the closed set of exportable material kinds.
type MaterialCategory string

const (
	CategorySummary         MaterialCategory = "summary"
	CategoryFlashcards      MaterialCategory = "flashcards"
	CategoryQuiz            MaterialCategory = "quiz"
	CategoryCompletePackage MaterialCategory = "complete_package"
)

// Valid reports whether c is one of the known categories.
func (c MaterialCategory) Valid() bool {
	switch c {
	case CategorySummary, CategoryFlashcards, CategoryQuiz, CategoryCompletePackage:
		return true
	default:
		return false
	}
}

// Label returns the display name of the category.
func (c MaterialCategory) Label() string {
	switch c {
	case CategorySummary:
		return "Summary"
	case CategoryFlashcards:
		return "Flashcards"
	case CategoryQuiz:
		return "Quiz"
	case CategoryCompletePackage:
		return "Complete Package"
	default:
		return string(c)
	}
}

// ExportableItem is a generated study material that can be exported.
type ExportableItem struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Category  MaterialCategory `json:"category"`
	SizeMB    float64          `json:"size_mb"`
	CreatedAt time.Time        `json:"created_at"`
}

// Validate validates the item
func (i ExportableItem) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return NewInvalidInputError("item id is required")
	}
	if !i.Category.Valid() {
		return NewInvalidInputError(fmt.Sprintf("item %s has unknown category %q", i.ID, i.Category))
	}
	if i.SizeMB < 0 {
		return NewInvalidInputError(fmt.Sprintf("item %s has negative size", i.ID))
	}
	return nil
}

// JobState is the lifecycle state of a simulated long-running operation.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether no further transitions can happen.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobCancelled
}

// ExportJob is one export attempt over a snapshot of the selection.
type ExportJob struct {
	ID        string    `json:"id"`
	ItemIDs   []string  `json:"item_ids"`
	TotalSize float64   `json:"total_size_mb"`
	Progress  int       `json:"progress"`
	State     JobState  `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

// ExportSnapshot is the read-only view of an export selection.
type ExportSnapshot struct {
	Items         []ExportableItem `json:"items"`
	Selected      []string         `json:"selected"`
	SelectedCount int              `json:"selected_count"`
	AllSelected   bool             `json:"all_selected"`
	TotalSize     float64          `json:"total_size_mb"`
	CanExport     bool             `json:"can_export"`
	Job           *ExportJob       `json:"job,omitempty"`
}

// JobRecord is what gets published to the job board for pollers.
type JobRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	Progress  int       `json:"progress"`
	State     JobState  `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}
