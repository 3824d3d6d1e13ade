package middleware

import (
	"studykit/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Locals keys set by ValidationMiddleware.
const (
	LocalSessionID = "validated_session_id"
	LocalItemID    = "validated_item_id"
	LocalJobID     = "validated_job_id"
)

// ValidationMiddleware provides request validation middleware.
// Params alias the fasthttp request buffer, which is reused after the
// handler returns, so ids stored in Locals are copies.
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSessionID checks the :id path parameter and stores it for handlers.
func (vm *ValidationMiddleware) ValidateSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Params("id"))
		if err := vm.validator.ValidateSessionID(id); err != nil {
			return err
		}
		c.Locals(LocalSessionID, id)
		return c.Next()
	}
}

// ValidateItemID checks the :itemId path parameter.
func (vm *ValidationMiddleware) ValidateItemID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID := utils.CopyString(c.Params("itemId"))
		if err := vm.validator.ValidateItemID(itemID); err != nil {
			return err
		}
		c.Locals(LocalItemID, itemID)
		return c.Next()
	}
}

// ValidateJobID checks the :jobId path parameter.
func (vm *ValidationMiddleware) ValidateJobID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID := utils.CopyString(c.Params("jobId"))
		if err := vm.validator.ValidateJobID(jobID); err != nil {
			return err
		}
		c.Locals(LocalJobID, jobID)
		return c.Next()
	}
}

// SessionID returns the id stored by ValidateSessionID, falling back to the raw parameter.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalSessionID).(string); ok {
		return id
	}
	return utils.CopyString(c.Params("id"))
}

// ItemID returns the id stored by ValidateItemID.
func ItemID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalItemID).(string); ok {
		return id
	}
	return utils.CopyString(c.Params("itemId"))
}

// JobID returns the id stored by ValidateJobID.
func JobID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalJobID).(string); ok {
		return id
	}
	return utils.CopyString(c.Params("jobId"))
}
