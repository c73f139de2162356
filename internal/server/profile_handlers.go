package server

import (
	"io"

	"dojo/internal/serializer"
	"dojo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/profiles
// @Summary List profiles
// @Tags profiles
// @Produce json
// @Param username query string false "Only profiles of this user"
// @Success 200 {array} serializer.Profile
// @Router /profiles [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.UserContext(), c.Query("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewProfiles(profiles))
}

// GetProfile handles GET /api/profiles/:id
// @Summary Get profile
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} serializer.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewProfile(profile))
}

// CreateProfile handles POST /api/profiles
// @Summary Create profile
// @Description Multipart: "data" holds the JSON document, "picture" an optional JPEG or PNG
// @Tags profiles
// @Accept mpfd
// @Produce json
// @Param data formData string true "JSON {beltLevel, description, martialArt, address, city, state, zipCode}"
// @Param picture formData file false "Profile picture"
// @Success 201 {object} serializer.Profile
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles [post]
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	in, closer, err := profileInput(c)
	if err != nil {
		return s.respondError(c, err)
	}
	defer func() { _ = closer.Close() }()
	in.UserID = currentUserID(c)

	profile, err := s.profileService.CreateProfile(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(serializer.NewProfile(profile))
}

// UpdateProfile handles PUT /api/profiles/:id
// @Summary Update profile
// @Description Owner only. A new picture replaces the stored picture and thumbnail.
// @Tags profiles
// @Accept mpfd,json
// @Produce json
// @Param id path int true "Profile ID"
// @Param data formData string false "JSON document"
// @Param picture formData file false "Replacement picture"
// @Success 200 {object} serializer.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{id} [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	in, closer, err := profileInput(c)
	if err != nil {
		return s.respondError(c, err)
	}
	defer func() { _ = closer.Close() }()
	in.UserID = currentUserID(c)
	in.ProfileID = id

	profile, err := s.profileService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(serializer.NewProfile(profile))
}

// DeleteProfile handles DELETE /api/profiles/:id
// @Summary Delete profile
// @Tags profiles
// @Param id path int true "Profile ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{id} [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.profileService.DeleteProfile(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// profileInput reads the profile document and the optional picture part.
func profileInput(c *fiber.Ctx) (service.SaveProfileInput, io.Closer, error) {
	var in service.SaveProfileInput
	if err := readData(c, &in.Data); err != nil {
		return in, nopCloser{}, err
	}
	picture, closer, err := formFile(c, "picture")
	if err != nil {
		return in, nopCloser{}, err
	}
	in.Picture = picture
	return in, closer, nil
}
