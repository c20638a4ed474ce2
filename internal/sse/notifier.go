package sse

import (
	"time"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

// ActivityNotifier is the interface services use to emit activity events.
type ActivityNotifier interface {
	NotifyActivity(rec *models.ActivityRecord)
}

// HubNotifier implements ActivityNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyActivity(rec *models.ActivityRecord) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&ActivityEvent{
		Event:     EventActivityCreated,
		Record:    *rec,
		Timestamp: time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyActivity(rec *models.ActivityRecord) {}
