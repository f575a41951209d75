package worker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/service"
	"github.com/audioforge/studio/internal/worker"
)

func TestStartEventWorkers_WithoutForwarder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	worker.StartEventWorkers(dispatcher, service.NewAuditService(dispatcher, zap.New(core)), nil)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserRegistered, UserID: "u1"}))

	assert.Equal(t, 1, logs.FilterMessage("UserRegistered").Len())
}

func TestStartEventWorkers_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { worker.StartEventWorkers(nil, nil, nil) })
}
