package server

import (
	"dojo/internal/models"
	"dojo/internal/serializer"
	"dojo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// renderComments serializes comments with their reply trees. With
// ?top_level=true only comments without a parent are listed.
func renderComments(c *fiber.Ctx, comments []*models.Comment) []serializer.Comment {
	list := comments
	if c.QueryBool("top_level", false) {
		list = models.TopLevel(comments)
	}
	return serializer.NewComments(list, comments)
}

// GetComments handles GET /api/comments
// @Summary List comments
// @Description Every comment, oldest first, each with its replies nested
// @Tags comments
// @Produce json
// @Param top_level query bool false "Only comments without a parent"
// @Success 200 {array} serializer.Comment
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(renderComments(c, comments))
}

// GetPostComments handles GET /api/posts/:id/comments
// @Summary List comments of a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param top_level query bool false "Only comments without a parent"
// @Success 200 {array} serializer.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(renderComments(c, comments))
}

// CountPostComments handles GET /api/posts/:id/comments/count
// @Summary Count comments of a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{post=int,count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/count [get]
func (s *Server) CountPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.commentService.CountByPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"post": postID, "count": count})
}

// GetComment handles GET /api/comments/:id
// @Summary Get comment
// @Description A single comment with its reply tree
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} serializer.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, thread, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewComment(comment, models.BuildReplyIndex(thread)))
}

// CreateComment handles POST /api/comments
// @Summary Create comment
// @Description The author is always the caller. parent, when set, must be a comment on the same post.
// @Tags comments
// @Accept json
// @Produce json
// @Param request body serializer.CommentInput true "Comment"
// @Success 201 {object} serializer.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var in serializer.CommentInput
	if err := serializer.DecodeBody(c.Body(), &in); err != nil {
		return s.respondError(c, err)
	}
	return s.createComment(c, in)
}

// CreatePostComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description Same as POST /comments with the post taken from the path
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body serializer.CommentInput true "Comment"
// @Success 201 {object} serializer.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreatePostComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var in serializer.CommentInput
	if err := serializer.DecodeBody(c.Body(), &in); err != nil {
		return s.respondError(c, err)
	}
	in.Post = postID
	return s.createComment(c, in)
}

func (s *Server) createComment(c *fiber.Ctx, in serializer.CommentInput) error {
	ctx := c.UserContext()
	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID: currentUserID(c),
		Data:   in,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	out := serializer.NewComment(comment, nil)
	s.publishCommentEvent(ctx, eventCommentCreated, out)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Update comment
// @Description Replaces commentDesc and checked. Post and parent are immutable.
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body serializer.CommentInput true "Comment"
// @Success 200 {object} serializer.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var in serializer.CommentInput
	if err := serializer.DecodeBody(c.Body(), &in); err != nil {
		return s.respondError(c, err)
	}

	ctx := c.UserContext()
	comment, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
		Data:      in,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	_, thread, err := s.commentService.GetComment(ctx, comment.ID)
	if err != nil {
		return s.respondError(c, err)
	}
	out := serializer.NewComment(comment, models.BuildReplyIndex(thread))
	s.publishCommentEvent(ctx, eventCommentUpdated, out)
	return c.JSON(out)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete comment
// @Description Removes the comment and every reply below it
// @Tags comments
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	comment, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishDeleted(ctx, eventCommentDeleted, fiber.Map{"id": comment.ID, "post": comment.PostID})
	return c.SendStatus(fiber.StatusNoContent)
}
