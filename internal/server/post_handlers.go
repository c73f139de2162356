package server

import (
	"dojo/internal/serializer"
	"dojo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description All posts, oldest first, with likes and comment trees
// @Tags posts
// @Produce json
// @Success 200 {array} serializer.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewPosts(posts))
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} serializer.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewPost(post))
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Multipart upload: "data" holds the JSON document, "file" the media
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param data formData string true "JSON {title, category, description}"
// @Param file formData file true "Image or video"
// @Success 201 {object} serializer.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var data serializer.PostInput
	if err := readData(c, &data); err != nil {
		return s.respondError(c, err)
	}
	file, closer, err := formFile(c, "file")
	if err != nil {
		return s.respondError(c, err)
	}
	defer func() { _ = closer.Close() }()

	ctx := c.UserContext()
	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID: currentUserID(c),
		Data:   data,
		File:   file,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	out := serializer.NewPost(post)
	s.publishPostEvent(ctx, eventPostCreated, out)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Description Multipart or JSON. A new "file" replaces the stored media.
// @Tags posts
// @Accept mpfd,json
// @Produce json
// @Param id path int true "Post ID"
// @Param data formData string false "JSON {title, category, description}"
// @Param file formData file false "Replacement media"
// @Success 200 {object} serializer.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var data serializer.PostInput
	if err := readData(c, &data); err != nil {
		return s.respondError(c, err)
	}
	file, closer, err := formFile(c, "file")
	if err != nil {
		return s.respondError(c, err)
	}
	defer func() { _ = closer.Close() }()

	ctx := c.UserContext()
	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID: currentUserID(c),
		PostID: id,
		Data:   data,
		File:   file,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	out := serializer.NewPost(post)
	s.publishPostEvent(ctx, eventPostUpdated, out)
	return c.JSON(out)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Removes the media, the comments and the likes with the post
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	if _, err := s.postService.DeletePost(ctx, service.DeletePostInput{UserID: currentUserID(c), PostID: id}); err != nil {
		return s.respondError(c, err)
	}

	s.publishDeleted(ctx, eventPostDeleted, fiber.Map{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle like
// @Description Likes the post, or removes the caller's like if already present
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} serializer.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	post, err := s.postService.ToggleLike(ctx, currentUserID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}

	out := serializer.NewPost(post)
	s.publishLikes(ctx, out)
	return c.JSON(out)
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Remove like
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} serializer.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	post, err := s.postService.Unlike(ctx, currentUserID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}

	out := serializer.NewPost(post)
	s.publishLikes(ctx, out)
	return c.JSON(out)
}
