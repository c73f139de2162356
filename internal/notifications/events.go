package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"dojo/internal/middleware"
	"dojo/internal/observability"
)

// Event types pushed to websocket clients.
const (
	EventPostCreated      = "post_created"
	EventPostUpdated      = "post_updated"
	EventPostDeleted      = "post_deleted"
	EventPostLikesUpdated = "post_likes_updated"
	EventCommentCreated   = "comment_created"
	EventCommentUpdated   = "comment_updated"
	EventCommentDeleted   = "comment_deleted"
)

// Event is the envelope written to clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Publisher fans events out to websocket clients. With a Redis-backed
// notifier events travel through pub/sub and reach the local hub through
// StartWiring; otherwise they go to the local hub directly. Failures are
// logged, never returned.
type Publisher struct {
	hub      *Hub
	notifier *Notifier
}

func NewPublisher(hub *Hub, notifier *Notifier) *Publisher {
	return &Publisher{hub: hub, notifier: notifier}
}

// Broadcast sends an event to every connected client.
func (p *Publisher) Broadcast(ctx context.Context, eventType string, payload any) {
	if p == nil {
		return
	}
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	observability.RealtimeEvents.WithLabelValues(eventType).Inc()

	if p.notifier.Enabled() {
		err := p.notifier.PublishBroadcast(ctx, string(b))
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to publish event, delivering locally",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
	}
	if p.hub != nil {
		p.hub.BroadcastAll(string(b))
	}
}
