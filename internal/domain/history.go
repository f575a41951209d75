package domain

import "time"

// ServiceType identifies the generation tool that produced a history item.
type ServiceType string

const (
	ServiceTextToSpeech   ServiceType = "styletts2"
	ServiceSpeechToSpeech ServiceType = "seedvc"
	ServiceSoundEffect    ServiceType = "make-an-audio"
	ServiceMelodyMaker    ServiceType = "melody-maker"
	ServiceLyricsToMusic  ServiceType = "lyrics-to-music"
)

var knownServices = map[ServiceType]struct{}{
	ServiceTextToSpeech:   {},
	ServiceSpeechToSpeech: {},
	ServiceSoundEffect:    {},
	ServiceMelodyMaker:    {},
	ServiceLyricsToMusic:  {},
}

// Valid reports whether s is a known service.
func (s ServiceType) Valid() bool {
	_, ok := knownServices[s]
	return ok
}

// HistoryItem records one generation.
type HistoryItem struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Service   ServiceType `json:"service"`
	Title     string      `json:"title"`
	Voice     *string     `json:"voice"`
	AudioURL  *string     `json:"audioUrl"`
	BlobName  string      `json:"blobName,omitempty"`
	Time      string      `json:"time"`
	Date      string      `json:"date"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
