package handler

import (
	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/logger"
	"studykit/internal/middleware"
	"studykit/internal/service"
	"studykit/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz for a video
// @Description Opens a quiz session and starts generating its questions
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Video"
// @Success 202 {object} dto.QuizSessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Failed to parse generate request", zap.Error(err))
		return domain.NewInvalidInputError("invalid request body")
	}
	if _, err := h.validator.ValidateVideoURL(req.VideoURL); err != nil {
		return err
	}

	resp, err := h.service.StartGeneration(c.UserContext(), req.VideoURL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// RegenerateQuiz godoc
// @Summary Regenerate the quiz of a session
// @Description Cancels a running generation and starts over, optionally for another video
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.GenerateQuizRequest false "Video"
// @Success 202 {object} dto.QuizSessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/generate [post]
func (h *QuizHandler) RegenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}
	if req.VideoURL != "" {
		if _, err := h.validator.ValidateVideoURL(req.VideoURL); err != nil {
			return err
		}
	}

	resp, err := h.service.Regenerate(c.UserContext(), middleware.SessionID(c), req.VideoURL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetQuiz godoc
// @Summary Get a quiz session
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizSessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.service.GetSession(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SelectAnswer godoc
// @Summary Select an option of the active question
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SelectAnswerRequest true "Option"
// @Success 200 {object} dto.QuizSessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/answer [post]
func (h *QuizHandler) SelectAnswer(c *fiber.Ctx) error {
	var req dto.SelectAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.OptionIndex == nil {
		return domain.NewValidationError("option_index is required").WithContext("field", "option_index")
	}

	resp, err := h.service.SelectAnswer(c.UserContext(), middleware.SessionID(c), *req.OptionIndex)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswer godoc
// @Summary Submit the selected answer
// @Description Grades the selection and reveals the correct option
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizSessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	resp, err := h.service.SubmitAnswer(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Advance godoc
// @Summary Move past the revealed answer
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizSessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/advance [post]
func (h *QuizHandler) Advance(c *fiber.Ctx) error {
	resp, err := h.service.Advance(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Reset godoc
// @Summary Restart the quiz
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizSessionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/reset [post]
func (h *QuizHandler) Reset(c *fiber.Ctx) error {
	resp, err := h.service.Reset(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetResult godoc
// @Summary Get the result of a completed quiz
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *QuizHandler) GetResult(c *fiber.Ctx) error {
	resp, err := h.service.GetResult(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CloseQuiz godoc
// @Summary Close a quiz session
// @Description Cancels generation and pending timers
// @Tags quiz
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) CloseQuiz(c *fiber.Ctx) error {
	if err := h.service.CloseSession(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
