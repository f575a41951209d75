package dto

import "github.com/audioforge/studio/internal/domain"

// SpeechRequest renders text with a voice.
type SpeechRequest struct {
	Text  string `json:"text" validate:"required"`
	Voice string `json:"voice" validate:"required"`
}

// SpeechToSpeechRequest converts an uploaded recording to another voice.
type SpeechToSpeechRequest struct {
	SourceBlobName string `json:"sourceBlobName" validate:"required"`
	Voice          string `json:"voice" validate:"required"`
}

// SoundEffectRequest renders a sound effect from a prompt.
type SoundEffectRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// MelodyRequest carries the melody maker parameters.
type MelodyRequest struct {
	Prompt                 string  `json:"prompt" validate:"required"`
	Solver                 string  `json:"solver" validate:"omitempty,oneof=midpoint euler"`
	Steps                  int     `json:"steps" validate:"gte=0,lte=1000"`
	Duration               float64 `json:"duration" validate:"gte=0,lte=30"`
	TargetFlow             float64 `json:"targetFlow" validate:"gte=0,lte=1"`
	Regularize             bool    `json:"regularize"`
	RegularizationStrength float64 `json:"regularizationStrength" validate:"gte=0"`
}

// MusicRequest is forwarded to the lyrics-to-music API as-is. Keys follow the
// upstream snake_case parameter names.
type MusicRequest map[string]any

// musicRules lists the upstream parameters each music operation needs.
var musicRules = map[domain.MusicOperation]map[string]any{
	domain.MusicGenerate: {},
	domain.MusicRetake:   {"retake_seeds": "required"},
	domain.MusicRepaint:  {"src_audio_path": "required", "repaint_start": "gte=0", "repaint_end": "gt=0"},
	domain.MusicEdit:     {"src_audio_path": "required", "edit_target_prompt": "required"},
	domain.MusicExtend:   {"src_audio_path": "required"},
}

// VoicesResponse lists voices for a service.
type VoicesResponse struct {
	Voices []string `json:"voices"`
}

// StatusResponse reports a generation's state.
type StatusResponse struct {
	Success  bool    `json:"success"`
	AudioURL *string `json:"audioUrl"`
}

// UploadRequest asks for an upload URL.
type UploadRequest struct {
	FileType string `json:"fileType" validate:"required"`
}
