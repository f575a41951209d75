package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/dto"
	"github.com/audioforge/studio/internal/service"
	apperrors "github.com/audioforge/studio/pkg/util"
)

// HistoryHandler lists and deletes generation history.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/history?service=.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}

	var query dto.HistoryQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("Invalid query", nil)
	}
	if err := dto.Validate(query); err != nil {
		return err
	}

	items, err := h.history.List(c.UserContext(), userID, query.Service)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// Delete handles DELETE /api/history/:id.
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	if err := h.history.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.DeleteResponse{Deleted: true})
}
