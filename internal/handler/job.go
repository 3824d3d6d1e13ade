package handler

import (
	"studykit/internal/middleware"
	"studykit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// JobHandler serves the job board
type JobHandler struct {
	board service.JobBoard
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(board service.JobBoard) *JobHandler {
	return &JobHandler{board: board}
}

// GetJob godoc
// @Summary Poll a background job
// @Description Returns the last published progress of an export or quiz generation job
// @Tags jobs
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /jobs/{jobId} [get]
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	resp, err := h.board.Lookup(c.UserContext(), middleware.JobID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
