package worker

import (
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/service"
)

// StartEventWorkers subscribes the audit log and, when configured, the NATS
// forwarder to dispatcher.
func StartEventWorkers(dispatcher events.Dispatcher, audit *service.AuditService, forwarder *events.NATSForwarder) {
	if dispatcher == nil {
		return
	}
	if audit != nil {
		audit.RegisterHandlers()
	}
	if forwarder != nil {
		forwarder.Register(dispatcher)
	}
}
