package handler

import (
	"studykit/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every API endpoint under router.
func RegisterRoutes(router fiber.Router, quiz *QuizHandler, export *ExportHandler, summary *SummaryHandler, jobs *JobHandler) {
	vm := middleware.NewValidationMiddleware()
	session := vm.ValidateSessionID()

	quizGroup := router.Group("/quizzes")
	quizGroup.Post("/", quiz.GenerateQuiz)
	quizGroup.Get("/:id", session, quiz.GetQuiz)
	quizGroup.Delete("/:id", session, quiz.CloseQuiz)
	quizGroup.Post("/:id/generate", session, quiz.RegenerateQuiz)
	quizGroup.Post("/:id/answer", session, quiz.SelectAnswer)
	quizGroup.Post("/:id/submit", session, quiz.SubmitAnswer)
	quizGroup.Post("/:id/advance", session, quiz.Advance)
	quizGroup.Post("/:id/reset", session, quiz.Reset)
	quizGroup.Get("/:id/result", session, quiz.GetResult)

	exportGroup := router.Group("/exports")
	exportGroup.Post("/", export.OpenExport)
	exportGroup.Get("/:id", session, export.GetExport)
	exportGroup.Delete("/:id", session, export.CloseExport)
	exportGroup.Post("/:id/items/:itemId/toggle", session, vm.ValidateItemID(), export.ToggleItem)
	exportGroup.Post("/:id/select-all", session, export.SelectAll)
	exportGroup.Post("/:id/clear-all", session, export.ClearAll)
	exportGroup.Post("/:id/toggle-all", session, export.ToggleAll)
	exportGroup.Post("/:id/jobs", session, export.StartExport)
	exportGroup.Get("/:id/jobs/current", session, export.GetCurrentJob)
	exportGroup.Delete("/:id/jobs/current", session, export.CancelCurrentJob)

	router.Post("/summaries", summary.GenerateSummary)

	router.Get("/jobs/:jobId", vm.ValidateJobID(), jobs.GetJob)
}
