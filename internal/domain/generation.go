package domain

import "time"

// GenerationStatus is the last known state of an audio generation.
type GenerationStatus struct {
	AudioID   string      `json:"audioId"`
	UserID    string      `json:"userId"`
	Service   ServiceType `json:"service"`
	AudioURL  string      `json:"audioUrl"`
	BlobName  string      `json:"blobName,omitempty"`
	HistoryID string      `json:"historyId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// GenerationResult is returned to callers after a generation completes.
type GenerationResult struct {
	AudioID                 string `json:"audioId"`
	AudioURL                string `json:"audioUrl"`
	ShouldShowThrottleAlert bool   `json:"shouldShowThrottleAlert"`
}

// MusicOperation names a lyrics-to-music API operation.
type MusicOperation string

const (
	MusicGenerate MusicOperation = "generate"
	MusicRetake   MusicOperation = "retake"
	MusicRepaint  MusicOperation = "repaint"
	MusicEdit     MusicOperation = "edit"
	MusicExtend   MusicOperation = "extend"
)

// Valid reports whether op is a known music operation.
func (op MusicOperation) Valid() bool {
	switch op {
	case MusicGenerate, MusicRetake, MusicRepaint, MusicEdit, MusicExtend:
		return true
	}
	return false
}
