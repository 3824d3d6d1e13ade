package handler

import (
	"studykit/internal/domain"
	"studykit/internal/dto"
	"studykit/internal/service"
	"studykit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SummaryHandler handles summary processing requests
type SummaryHandler struct {
	service   service.SummaryService
	validator *validation.Validator
}

// NewSummaryHandler creates a new SummaryHandler instance
func NewSummaryHandler(service service.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateSummary godoc
// @Summary Summarize a video
// @Description Starts summary processing. Poll the returned job under /jobs/{jobId}.
// @Tags summaries
// @Accept json
// @Produce json
// @Param request body dto.GenerateSummaryRequest true "Video"
// @Success 202 {object} dto.JobProgressResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /summaries [post]
func (h *SummaryHandler) GenerateSummary(c *fiber.Ctx) error {
	var req dto.GenerateSummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if _, err := h.validator.ValidateVideoURL(req.VideoURL); err != nil {
		return err
	}

	resp, err := h.service.StartSummary(c.UserContext(), req.VideoURL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}
