package server

import (
	"context"

	"dojo/internal/notifications"
	"dojo/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

const (
	eventPostCreated    = notifications.EventPostCreated
	eventPostUpdated    = notifications.EventPostUpdated
	eventPostDeleted    = notifications.EventPostDeleted
	eventCommentCreated = notifications.EventCommentCreated
	eventCommentUpdated = notifications.EventCommentUpdated
	eventCommentDeleted = notifications.EventCommentDeleted
)

// Events are published after the write has committed. Delivery is
// best-effort and never fails the request.

func (s *Server) publishPostEvent(ctx context.Context, eventType string, post serializer.Post) {
	s.events.Broadcast(ctx, eventType, post)
}

func (s *Server) publishCommentEvent(ctx context.Context, eventType string, comment serializer.Comment) {
	s.events.Broadcast(ctx, eventType, comment)
}

func (s *Server) publishLikes(ctx context.Context, post serializer.Post) {
	s.events.Broadcast(ctx, notifications.EventPostLikesUpdated, fiber.Map{
		"post":       post.ID,
		"likes":      post.Likes,
		"likesCount": post.LikesCount,
	})
}

func (s *Server) publishDeleted(ctx context.Context, eventType string, ids fiber.Map) {
	s.events.Broadcast(ctx, eventType, ids)
}
