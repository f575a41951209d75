package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/domain"
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/modelapi"
	"github.com/audioforge/studio/internal/repository"
	apperrors "github.com/audioforge/studio/pkg/util"
)

const (
	melodyModel         = "facebook/melodyflow-t24-30secs"
	defaultMelodySolver = "midpoint"
	defaultMelodySteps  = 128
	defaultMelodyLength = 10.0
	defaultMusicTitle   = "Generated Music"
	speechToSpeechTitle = "Speech to Speech"
	soundEffectPrefix   = "Sound Effect: "
)

var musicPaths = map[domain.MusicOperation]string{
	domain.MusicGenerate: "/generate",
	domain.MusicRetake:   "/generate/retake",
	domain.MusicRepaint:  "/generate/repaint",
	domain.MusicEdit:     "/generate/edit",
	domain.MusicExtend:   "/generate/extend",
}

// SpeechInput renders Text with Voice.
type SpeechInput struct {
	Text  string
	Voice string
}

// SpeechToSpeechInput converts the uploaded blob SourceBlobName into Voice.
type SpeechToSpeechInput struct {
	SourceBlobName string
	Voice          string
}

// SoundEffectInput describes a sound effect.
type SoundEffectInput struct {
	Prompt string
}

// MelodyInput carries melody maker parameters. Zero values take defaults.
type MelodyInput struct {
	Prompt                 string
	Solver                 string
	Steps                  int
	Duration               float64
	TargetFlow             float64
	Regularize             bool
	RegularizationStrength float64
}

// MusicInput is forwarded to the lyrics-to-music API. Params use the
// upstream snake_case names and are expected to be validated already.
type MusicInput struct {
	Operation domain.MusicOperation
	Params    map[string]any
}

// ModelClient is the part of a model API client the generation service uses.
type ModelClient interface {
	Post(ctx context.Context, path string, body any) (*modelapi.Result, error)
	Voices(ctx context.Context) ([]string, error)
	Configured() bool
}

// ModelClients holds one client per generation family.
type ModelClients struct {
	Speech          ModelClient
	VoiceConversion ModelClient
	SoundEffect     ModelClient
	Melody          ModelClient
	Music           ModelClient
}

func (m ModelClients) byService() map[domain.ServiceType]ModelClient {
	return map[domain.ServiceType]ModelClient{
		domain.ServiceTextToSpeech:   m.Speech,
		domain.ServiceSpeechToSpeech: m.VoiceConversion,
		domain.ServiceSoundEffect:    m.SoundEffect,
		domain.ServiceMelodyMaker:    m.Melody,
		domain.ServiceLyricsToMusic:  m.Music,
	}
}

// GenerationService forwards generation requests to the model APIs and
// records what they produce.
type GenerationService struct {
	clients    map[domain.ServiceType]ModelClient
	history    *HistoryService
	statuses   repository.StatusStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	newID      func() string
	now        func() time.Time
}

// GenerationDependencies bundles the generation service collaborators.
type GenerationDependencies struct {
	Clients    ModelClients
	History    *HistoryService
	Statuses   repository.StatusStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewGenerationService constructs the service.
func NewGenerationService(deps GenerationDependencies) *GenerationService {
	return &GenerationService{
		clients:    deps.Clients.byService(),
		history:    deps.History,
		statuses:   deps.Statuses,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

type generation struct {
	service domain.ServiceType
	path    string
	body    any
	title   string
	voice   *string
	action  string
}

// TextToSpeech renders text with voice.
func (s *GenerationService) TextToSpeech(ctx context.Context, userID string, in SpeechInput) (*domain.GenerationResult, error) {
	return s.run(ctx, userID, generation{
		service: domain.ServiceTextToSpeech,
		path:    "/generate",
		body:    map[string]any{"text": in.Text, "target_voice": in.Voice},
		title:   in.Text,
		voice:   &in.Voice,
		action:  "generate speech",
	})
}

// SpeechToSpeech converts an uploaded recording into voice.
func (s *GenerationService) SpeechToSpeech(ctx context.Context, userID string, in SpeechToSpeechInput) (*domain.GenerationResult, error) {
	return s.run(ctx, userID, generation{
		service: domain.ServiceSpeechToSpeech,
		path:    "/convert",
		body:    map[string]any{"source_audio_key": in.SourceBlobName, "target_voice": in.Voice},
		title:   speechToSpeechTitle,
		voice:   &in.Voice,
		action:  "convert speech",
	})
}

// SoundEffect renders a sound effect from a prompt.
func (s *GenerationService) SoundEffect(ctx context.Context, userID string, in SoundEffectInput) (*domain.GenerationResult, error) {
	return s.run(ctx, userID, generation{
		service: domain.ServiceSoundEffect,
		path:    "/generate",
		body:    map[string]any{"prompt": in.Prompt},
		title:   soundEffectPrefix + in.Prompt,
		action:  "generate sound effect",
	})
}

// Melody renders a melody with the melody maker.
func (s *GenerationService) Melody(ctx context.Context, userID string, in MelodyInput) (*domain.GenerationResult, error) {
	solver := in.Solver
	if solver == "" {
		solver = defaultMelodySolver
	}
	steps := in.Steps
	if steps == 0 {
		steps = defaultMelodySteps
	}
	duration := in.Duration
	if duration == 0 {
		duration = defaultMelodyLength
	}

	return s.run(ctx, userID, generation{
		service: domain.ServiceMelodyMaker,
		path:    "/generate",
		body: map[string]any{
			"text":                    in.Prompt,
			"solver":                  solver,
			"steps":                   steps,
			"target_flowstep":         in.TargetFlow,
			"regularize":              in.Regularize,
			"regularization_strength": in.RegularizationStrength,
			"duration":                duration,
			"model_name":              melodyModel,
			"num_variations":          1,
		},
		title:  in.Prompt,
		action: "generate melody",
	})
}

// Music runs one lyrics-to-music operation (generate, retake, repaint, edit
// or extend) with the caller's parameters.
func (s *GenerationService) Music(ctx context.Context, userID string, in MusicInput) (*domain.GenerationResult, error) {
	path, ok := musicPaths[in.Operation]
	if !ok {
		return nil, apperrors.NewNotFound("Unknown music operation")
	}
	params := in.Params
	if params == nil {
		params = map[string]any{}
	}
	title, _ := params["prompt"].(string)
	if title == "" {
		title = defaultMusicTitle
	}

	return s.run(ctx, userID, generation{
		service: domain.ServiceLyricsToMusic,
		path:    path,
		body:    params,
		title:   title,
		action:  string(in.Operation) + " music",
	})
}

// Status returns the recorded status of audioID when it belongs to userID.
func (s *GenerationService) Status(ctx context.Context, userID, audioID string) (*domain.GenerationStatus, bool, error) {
	status, err := s.statuses.Get(ctx, audioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if status.UserID != userID {
		return nil, false, nil
	}
	return status, true, nil
}

// Voices lists the voices of service.
func (s *GenerationService) Voices(ctx context.Context, service string) ([]string, error) {
	client, err := s.client(domain.ServiceType(service))
	if err != nil {
		return nil, err
	}
	voices, err := client.Voices(ctx)
	if err != nil {
		return nil, upstreamError(err, "Failed to fetch voices")
	}
	return voices, nil
}

func (s *GenerationService) client(service domain.ServiceType) (ModelClient, error) {
	if !service.Valid() {
		return nil, apperrors.NewNotFound("Unknown service")
	}
	client := s.clients[service]
	if client == nil || !client.Configured() {
		return nil, apperrors.NewServiceUnavailable(fmt.Sprintf("%s is not configured", service), nil)
	}
	return client, nil
}

func (s *GenerationService) run(ctx context.Context, userID string, g generation) (*domain.GenerationResult, error) {
	client, err := s.client(g.service)
	if err != nil {
		return nil, err
	}

	result, err := client.Post(ctx, g.path, g.body)
	if err != nil {
		s.logger.Warn("model api call failed",
			zap.String("service", string(g.service)),
			zap.String("path", g.path),
			zap.Error(err))
		return nil, upstreamError(err, "Failed to "+g.action)
	}

	audioID := s.newID()
	status := domain.GenerationStatus{
		AudioID:   audioID,
		UserID:    userID,
		Service:   g.service,
		AudioURL:  result.AudioURL,
		BlobName:  result.BlobName,
		CreatedAt: s.now().UTC(),
	}

	audioURL := result.AudioURL
	item, err := s.history.Record(ctx, RecordInput{
		UserID:   userID,
		Service:  g.service,
		Title:    g.title,
		Voice:    g.voice,
		AudioURL: &audioURL,
		BlobName: result.BlobName,
	})
	if err != nil {
		s.logger.Error("failed to record history", zap.String("audio_id", audioID), zap.Error(err))
	} else {
		status.HistoryID = item.ID
	}

	if err := s.statuses.Put(ctx, status); err != nil {
		s.logger.Warn("failed to store generation status", zap.String("audio_id", audioID), zap.Error(err))
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:   events.EventGenerationCompleted,
		UserID: userID,
		Payload: events.GenerationCompletedPayload{
			AudioID:   audioID,
			Service:   g.service,
			AudioURL:  result.AudioURL,
			BlobName:  result.BlobName,
			HistoryID: status.HistoryID,
		},
	})

	return &domain.GenerationResult{
		AudioID:                 audioID,
		AudioURL:                result.AudioURL,
		ShouldShowThrottleAlert: false,
	}, nil
}

func upstreamError(err error, fallback string) error {
	var upstream *modelapi.UpstreamError
	switch {
	case errors.As(err, &upstream):
		if upstream.Detail != "" {
			return apperrors.NewBadGateway(upstream.Detail, err)
		}
		return apperrors.NewBadGateway(fallback, err)
	case errors.Is(err, modelapi.ErrNoAudioURL):
		return apperrors.NewBadGateway("No audio URL received from the API.", err)
	case errors.Is(err, modelapi.ErrNotConfigured):
		return apperrors.NewServiceUnavailable("Model API is not configured", err)
	default:
		return apperrors.NewBadGateway(fallback, err)
	}
}
