package handler_test

import (
	"context"

	"studykit/internal/dto"
)

// --- Manual Mocks ---

type MockQuizService struct {
	StartGenerationFunc func(ctx context.Context, videoURL string) (*dto.QuizSessionResponse, error)
	RegenerateFunc      func(ctx context.Context, sessionID, videoURL string) (*dto.QuizSessionResponse, error)
	GetSessionFunc      func(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	SelectAnswerFunc    func(ctx context.Context, sessionID string, optionIndex int) (*dto.QuizSessionResponse, error)
	SubmitAnswerFunc    func(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	AdvanceFunc         func(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	ResetFunc           func(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error)
	GetResultFunc       func(ctx context.Context, sessionID string) (*dto.QuizResultResponse, error)
	CloseSessionFunc    func(ctx context.Context, sessionID string) error
}

func (m *MockQuizService) StartGeneration(ctx context.Context, videoURL string) (*dto.QuizSessionResponse, error) {
	if m.StartGenerationFunc != nil {
		return m.StartGenerationFunc(ctx, videoURL)
	}
	panic("MockQuizService.StartGenerationFunc not implemented")
}

func (m *MockQuizService) Regenerate(ctx context.Context, sessionID, videoURL string) (*dto.QuizSessionResponse, error) {
	if m.RegenerateFunc != nil {
		return m.RegenerateFunc(ctx, sessionID, videoURL)
	}
	panic("MockQuizService.RegenerateFunc not implemented")
}

func (m *MockQuizService) GetSession(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	panic("MockQuizService.GetSessionFunc not implemented")
}

func (m *MockQuizService) SelectAnswer(ctx context.Context, sessionID string, optionIndex int) (*dto.QuizSessionResponse, error) {
	if m.SelectAnswerFunc != nil {
		return m.SelectAnswerFunc(ctx, sessionID, optionIndex)
	}
	panic("MockQuizService.SelectAnswerFunc not implemented")
}

func (m *MockQuizService) SubmitAnswer(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	if m.SubmitAnswerFunc != nil {
		return m.SubmitAnswerFunc(ctx, sessionID)
	}
	panic("MockQuizService.SubmitAnswerFunc not implemented")
}

func (m *MockQuizService) Advance(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, sessionID)
	}
	panic("MockQuizService.AdvanceFunc not implemented")
}

func (m *MockQuizService) Reset(ctx context.Context, sessionID string) (*dto.QuizSessionResponse, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	panic("MockQuizService.ResetFunc not implemented")
}

func (m *MockQuizService) GetResult(ctx context.Context, sessionID string) (*dto.QuizResultResponse, error) {
	if m.GetResultFunc != nil {
		return m.GetResultFunc(ctx, sessionID)
	}
	panic("MockQuizService.GetResultFunc not implemented")
}

func (m *MockQuizService) CloseSession(ctx context.Context, sessionID string) error {
	if m.CloseSessionFunc != nil {
		return m.CloseSessionFunc(ctx, sessionID)
	}
	panic("MockQuizService.CloseSessionFunc not implemented")
}

func (m *MockQuizService) Shutdown() {}

type MockExportService struct {
	OpenSessionFunc  func(ctx context.Context, preselected []string) (*dto.ExportSessionResponse, error)
	GetSessionFunc   func(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ToggleItemFunc   func(ctx context.Context, sessionID, itemID string) (*dto.ExportSessionResponse, error)
	SelectAllFunc    func(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ClearAllFunc     func(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	ToggleAllFunc    func(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error)
	StartExportFunc  func(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CurrentJobFunc   func(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CancelExportFunc func(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error)
	CloseSessionFunc func(ctx context.Context, sessionID string) error
}

func (m *MockExportService) OpenSession(ctx context.Context, preselected []string) (*dto.ExportSessionResponse, error) {
	if m.OpenSessionFunc != nil {
		return m.OpenSessionFunc(ctx, preselected)
	}
	panic("MockExportService.OpenSessionFunc not implemented")
}

func (m *MockExportService) GetSession(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	panic("MockExportService.GetSessionFunc not implemented")
}

func (m *MockExportService) ToggleItem(ctx context.Context, sessionID, itemID string) (*dto.ExportSessionResponse, error) {
	if m.ToggleItemFunc != nil {
		return m.ToggleItemFunc(ctx, sessionID, itemID)
	}
	panic("MockExportService.ToggleItemFunc not implemented")
}

func (m *MockExportService) SelectAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	if m.SelectAllFunc != nil {
		return m.SelectAllFunc(ctx, sessionID)
	}
	panic("MockExportService.SelectAllFunc not implemented")
}

func (m *MockExportService) ClearAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	if m.ClearAllFunc != nil {
		return m.ClearAllFunc(ctx, sessionID)
	}
	panic("MockExportService.ClearAllFunc not implemented")
}

func (m *MockExportService) ToggleAll(ctx context.Context, sessionID string) (*dto.ExportSessionResponse, error) {
	if m.ToggleAllFunc != nil {
		return m.ToggleAllFunc(ctx, sessionID)
	}
	panic("MockExportService.ToggleAllFunc not implemented")
}

func (m *MockExportService) StartExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	if m.StartExportFunc != nil {
		return m.StartExportFunc(ctx, sessionID)
	}
	panic("MockExportService.StartExportFunc not implemented")
}

func (m *MockExportService) CurrentJob(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	if m.CurrentJobFunc != nil {
		return m.CurrentJobFunc(ctx, sessionID)
	}
	panic("MockExportService.CurrentJobFunc not implemented")
}

func (m *MockExportService) CancelExport(ctx context.Context, sessionID string) (*dto.ExportJobResponse, error) {
	if m.CancelExportFunc != nil {
		return m.CancelExportFunc(ctx, sessionID)
	}
	panic("MockExportService.CancelExportFunc not implemented")
}

func (m *MockExportService) CloseSession(ctx context.Context, sessionID string) error {
	if m.CloseSessionFunc != nil {
		return m.CloseSessionFunc(ctx, sessionID)
	}
	panic("MockExportService.CloseSessionFunc not implemented")
}

func (m *MockExportService) Shutdown() {}

type MockSummaryService struct {
	StartSummaryFunc func(ctx context.Context, videoURL string) (*dto.JobProgressResponse, error)
}

func (m *MockSummaryService) StartSummary(ctx context.Context, videoURL string) (*dto.JobProgressResponse, error) {
	if m.StartSummaryFunc != nil {
		return m.StartSummaryFunc(ctx, videoURL)
	}
	panic("MockSummaryService.StartSummaryFunc not implemented")
}

func (m *MockSummaryService) Shutdown() {}
