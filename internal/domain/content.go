package domain

import "context"

// QuestionSource produces the questions of a quiz for a video.
// The real implementation lives behind a content-generation backend.
type QuestionSource interface {
	QuestionsForVideo(ctx context.Context, videoURL string) ([]QuizQuestion, error)
}

// MaterialCatalog lists the materials available for export.
type MaterialCatalog interface {
	ListMaterials(ctx context.Context) ([]ExportableItem, error)
}
