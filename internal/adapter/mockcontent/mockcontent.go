// Package mockcontent stands in for the content-generation backend with fixed study material.
package mockcontent

import (
	"context"
	"time"

	"studykit/internal/domain"
)

// Provider serves the same quiz for every video and a fixed export catalog.
type Provider struct {
	questions []domain.QuizQuestion
	materials []domain.ExportableItem
}

// NewProvider creates a Provider seeded with the demo material.
func NewProvider(now time.Time) *Provider {
	return &Provider{
		questions: DefaultQuestions(),
		materials: DefaultMaterials(now),
	}
}

// NewProviderWith creates a Provider serving the given content.
func NewProviderWith(questions []domain.QuizQuestion, materials []domain.ExportableItem) *Provider {
	return &Provider{questions: questions, materials: materials}
}

func (p *Provider) QuestionsForVideo(ctx context.Context, videoURL string) ([]domain.QuizQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.QuizQuestion, len(p.questions))
	for i, q := range p.questions {
		out[i] = domain.NewQuizQuestion(q.Prompt, q.Options, q.CorrectIndex)
	}
	return out, nil
}

func (p *Provider) ListMaterials(ctx context.Context) ([]domain.ExportableItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.ExportableItem, len(p.materials))
	copy(out, p.materials)
	return out, nil
}

// DefaultQuestions is the demo quiz.
func DefaultQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		domain.NewQuizQuestion("What is React used for?",
			[]string{"Building user interfaces", "Data analysis", "Machine learning", "Game development"}, 0),
		domain.NewQuizQuestion("What is a component in React?",
			[]string{"A reusable UI element", "A database query", "A server-side function", "A CSS style"}, 0),
		domain.NewQuizQuestion("What is JSX?",
			[]string{"A syntax extension to JavaScript", "A database language", "A server technology", "A type of CSS"}, 0),
	}
}

// DefaultMaterials is the demo export catalog, created relative to now.
func DefaultMaterials(now time.Time) []domain.ExportableItem {
	return []domain.ExportableItem{
		{ID: "summary-react-hooks", Title: "React Hooks Explained - AI Summary", Category: domain.CategorySummary, SizeMB: 1.1, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "flashcards-react-hooks", Title: "React Hooks Explained - Flashcards", Category: domain.CategoryFlashcards, SizeMB: 0.8, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "quiz-react-hooks", Title: "React Hooks Explained - Quiz Questions", Category: domain.CategoryQuiz, SizeMB: 1.5, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "package-cs229", Title: "Introduction to Machine Learning - Complete Package", Category: domain.CategoryCompletePackage, SizeMB: 2.4, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "summary-python-ds", Title: "Python Data Science Tutorial - AI Summary", Category: domain.CategorySummary, SizeMB: 1.2, CreatedAt: now.Add(-72 * time.Hour)},
	}
}

var (
	_ domain.QuestionSource  = (*Provider)(nil)
	_ domain.MaterialCatalog = (*Provider)(nil)
)
