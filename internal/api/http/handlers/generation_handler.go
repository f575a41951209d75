package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/audioforge/studio/internal/api/dto"
	"github.com/audioforge/studio/internal/domain"
	"github.com/audioforge/studio/internal/service"
	apperrors "github.com/audioforge/studio/pkg/util"
)

// GenerationHandler forwards generation requests for the signed-in user.
type GenerationHandler struct {
	generation *service.GenerationService
}

// NewGenerationHandler constructs handler.
func NewGenerationHandler(generation *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generation: generation}
}

// Speech handles POST /api/generate/speech.
func (h *GenerationHandler) Speech(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.SpeechRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.generation.TextToSpeech(c.UserContext(), userID, service.SpeechInput{
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// SpeechToSpeech handles POST /api/generate/speech-to-speech.
func (h *GenerationHandler) SpeechToSpeech(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.SpeechToSpeechRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.generation.SpeechToSpeech(c.UserContext(), userID, service.SpeechToSpeechInput{
		SourceBlobName: req.SourceBlobName,
		Voice:          req.Voice,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// SoundEffect handles POST /api/generate/sound-effect.
func (h *GenerationHandler) SoundEffect(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.SoundEffectRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.generation.SoundEffect(c.UserContext(), userID, service.SoundEffectInput{Prompt: req.Prompt})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Melody handles POST /api/generate/melody.
func (h *GenerationHandler) Melody(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.MelodyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.generation.Melody(c.UserContext(), userID, service.MelodyInput{
		Prompt:                 req.Prompt,
		Solver:                 req.Solver,
		Steps:                  req.Steps,
		Duration:               req.Duration,
		TargetFlow:             req.TargetFlow,
		Regularize:             req.Regularize,
		RegularizationStrength: req.RegularizationStrength,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Music handles POST /api/generate/music and /api/generate/music/:operation.
func (h *GenerationHandler) Music(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	op := domain.MusicOperation(c.Params("operation", string(domain.MusicGenerate)))
	if !op.Valid() {
		return apperrors.NewNotFound("Unknown music operation")
	}

	req := dto.MusicRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("Invalid request body", nil)
		}
	}
	if err := dto.ValidateMusic(op, req); err != nil {
		return err
	}
	res, err := h.generation.Music(c.UserContext(), userID, service.MusicInput{Operation: op, Params: req})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Status handles GET /api/generate/status/:audioId.
func (h *GenerationHandler) Status(c *fiber.Ctx) error {
	userID, err := subject(c)
	if err != nil {
		return err
	}
	status, ok, err := h.generation.Status(c.UserContext(), userID, c.Params("audioId"))
	if err != nil {
		return err
	}
	if !ok || status.AudioURL == "" {
		return c.JSON(dto.StatusResponse{Success: false})
	}
	audioURL := status.AudioURL
	return c.JSON(dto.StatusResponse{Success: true, AudioURL: &audioURL})
}

// Voices handles GET /api/voices/:service.
func (h *GenerationHandler) Voices(c *fiber.Ctx) error {
	voices, err := h.generation.Voices(c.UserContext(), c.Params("service"))
	if err != nil {
		return err
	}
	return c.JSON(dto.VoicesResponse{Voices: voices})
}
