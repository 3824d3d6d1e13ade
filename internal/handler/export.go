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

// ExportHandler handles export selection and export job requests
type ExportHandler struct {
	service   service.ExportService
	validator *validation.Validator
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(service service.ExportService) *ExportHandler {
	return &ExportHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// OpenExport godoc
// @Summary Open an export view
// @Description Lists the exportable materials with an empty or preselected selection
// @Tags export
// @Accept json
// @Produce json
// @Param request body dto.OpenExportRequest false "Preselected items"
// @Success 201 {object} dto.ExportSessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /exports [post]
func (h *ExportHandler) OpenExport(c *fiber.Ctx) error {
	var req dto.OpenExportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.Get().Debug("Failed to parse open export request", zap.Error(err))
			return domain.NewInvalidInputError("invalid request body")
		}
	}
	for _, id := range req.Preselected {
		if err := h.validator.ValidateItemID(id); err != nil {
			return err
		}
	}

	resp, err := h.service.OpenSession(c.UserContext(), req.Preselected)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetExport godoc
// @Summary Get an export view
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportSessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /exports/{id} [get]
func (h *ExportHandler) GetExport(c *fiber.Ctx) error {
	resp, err := h.service.GetSession(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ToggleItem godoc
// @Summary Toggle the selection of one item
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} dto.ExportSessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /exports/{id}/items/{itemId}/toggle [post]
func (h *ExportHandler) ToggleItem(c *fiber.Ctx) error {
	resp, err := h.service.ToggleItem(c.UserContext(), middleware.SessionID(c), middleware.ItemID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SelectAll godoc
// @Summary Select every item
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportSessionResponse
// @Router /exports/{id}/select-all [post]
func (h *ExportHandler) SelectAll(c *fiber.Ctx) error {
	resp, err := h.service.SelectAll(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ClearAll godoc
// @Summary Clear the selection
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportSessionResponse
// @Router /exports/{id}/clear-all [post]
func (h *ExportHandler) ClearAll(c *fiber.Ctx) error {
	resp, err := h.service.ClearAll(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ToggleAll godoc
// @Summary Flip the "select all" checkbox
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportSessionResponse
// @Router /exports/{id}/toggle-all [post]
func (h *ExportHandler) ToggleAll(c *fiber.Ctx) error {
	resp, err := h.service.ToggleAll(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// StartExport godoc
// @Summary Export the selected items
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} dto.ExportJobResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /exports/{id}/jobs [post]
func (h *ExportHandler) StartExport(c *fiber.Ctx) error {
	resp, err := h.service.StartExport(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetCurrentJob godoc
// @Summary Get the latest export job
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportJobResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /exports/{id}/jobs/current [get]
func (h *ExportHandler) GetCurrentJob(c *fiber.Ctx) error {
	resp, err := h.service.CurrentJob(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CancelCurrentJob godoc
// @Summary Cancel the running export job
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ExportJobResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /exports/{id}/jobs/current [delete]
func (h *ExportHandler) CancelCurrentJob(c *fiber.Ctx) error {
	resp, err := h.service.CancelExport(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CloseExport godoc
// @Summary Close an export view
// @Tags export
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /exports/{id} [delete]
func (h *ExportHandler) CloseExport(c *fiber.Ctx) error {
	if err := h.service.CloseSession(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
