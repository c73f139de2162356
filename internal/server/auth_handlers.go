package server

import (
	"dojo/internal/auth"
	"dojo/internal/models"
	"dojo/internal/serializer"

	"github.com/gofiber/fiber/v2"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account. password and password2 must match.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body serializer.RegisterInput true "Registration"
// @Success 201 {object} serializer.User
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in serializer.RegisterInput
	if err := serializer.DecodeBody(c.Body(), &in); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.accountService.Register(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(serializer.NewUser(user))
}

// Token handles POST /api/auth/token
// @Summary Obtain tokens
// @Description Exchange credentials for an access and a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body tokenRequest true "Credentials"
// @Success 200 {object} auth.Pair
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token [post]
func (s *Server) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := serializer.DecodeBody(c.Body(), &req); err != nil {
		return s.respondError(c, err)
	}

	pair, err := s.accountService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(pair)
}

// RefreshToken handles POST /api/auth/token/refresh
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := serializer.DecodeBody(c.Body(), &req); err != nil {
		return s.respondError(c, err)
	}

	access, err := s.accountService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current access token and, optionally, a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest false "Refresh token to revoke"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*auth.Claims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication credentials were not provided."))
	}

	var req refreshRequest
	if len(c.Body()) > 0 {
		if err := serializer.DecodeBody(c.Body(), &req); err != nil {
			return s.respondError(c, err)
		}
	}

	if err := s.accountService.Logout(c.UserContext(), claims, req.Refresh); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} serializer.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.accountService.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewUser(user))
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete account
// @Description Delete the caller with their posts, comments, likes, profiles and media
// @Tags users
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.accountService.DeleteAccount(ctx, currentUserID(c)); err != nil {
		return s.respondError(c, err)
	}
	if claims, ok := c.Locals("claims").(*auth.Claims); ok {
		// The account is gone; its token must not authenticate a recreated id.
		_ = s.tokens.Revoke(ctx, claims)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
