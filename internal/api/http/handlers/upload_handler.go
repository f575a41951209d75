package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/dto"
	"github.com/audioforge/studio/internal/service"
)

// UploadHandler issues upload URLs for source recordings.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Create handles POST /api/uploads.
func (h *UploadHandler) Create(c *fiber.Ctx) error {
	var req dto.UploadRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	target, err := h.uploads.UploadURL(c.UserContext(), req.FileType)
	if err != nil {
		return err
	}
	return c.JSON(target)
}
