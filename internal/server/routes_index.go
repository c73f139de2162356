package server

import "github.com/gofiber/fiber/v2"

// RouteInfo describes one public endpoint in the API index.
type RouteInfo struct {
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
	Body        any    `json:"body"`
	Description string `json:"description"`
}

var routeIndex = []RouteInfo{
	{"/api/posts", fiber.MethodGet, nil, "Returns an array of posts (videos and pictures)"},
	{"/api/posts/:id", fiber.MethodGet, nil, "Returns a single post"},
	{"/api/posts", fiber.MethodPost, fiber.Map{"data": `{"title": "", "category": "", "description": ""}`, "file": "binary"}, "Creates a post from a multipart upload"},
	{"/api/posts/:id", fiber.MethodPut, fiber.Map{"data": `{"title": "", "category": "", "description": ""}`, "file": "binary (optional)"}, "Updates an existing post"},
	{"/api/posts/:id", fiber.MethodDelete, nil, "Deletes an existing post with its comments and likes"},
	{"/api/posts/:id/like", fiber.MethodPost, nil, "Toggles the caller's like on a post"},
	{"/api/posts/:id/like", fiber.MethodDelete, nil, "Removes the caller's like from a post"},
	{"/api/posts/:id/comments", fiber.MethodGet, nil, "Returns the comments of a post"},
	{"/api/posts/:id/comments/count", fiber.MethodGet, nil, "Returns the number of comments on a post"},
	{"/api/comments", fiber.MethodGet, nil, "Returns every comment; ?top_level=true keeps only comments without a parent"},
	{"/api/comments/:id", fiber.MethodGet, nil, "Returns a comment with its replies"},
	{"/api/comments", fiber.MethodPost, fiber.Map{"post": 0, "commentDesc": "", "parent": nil, "checked": false}, "Creates a comment or, with parent set, a reply"},
	{"/api/comments/:id", fiber.MethodPut, fiber.Map{"commentDesc": "", "checked": false}, "Updates a comment"},
	{"/api/comments/:id", fiber.MethodDelete, nil, "Deletes a comment and its replies"},
	{"/api/profiles", fiber.MethodGet, nil, "Returns profiles; ?username= filters by owner"},
	{"/api/profiles/:id", fiber.MethodGet, nil, "Returns a single profile"},
	{"/api/profiles", fiber.MethodPost, fiber.Map{"data": `{"beltLevel": "", "martialArt": "", "city": "", "state": "", "zipCode": ""}`, "picture": "binary (optional)"}, "Creates a profile"},
	{"/api/profiles/:id", fiber.MethodPut, fiber.Map{"data": "{...}", "picture": "binary (optional)"}, "Updates a profile"},
	{"/api/profiles/:id", fiber.MethodDelete, nil, "Deletes a profile and its pictures"},
	{"/api/auth/register", fiber.MethodPost, fiber.Map{"username": "", "email": "", "password": "", "password2": "", "first_name": "", "last_name": ""}, "Registers a user"},
	{"/api/auth/token", fiber.MethodPost, fiber.Map{"username": "", "password": ""}, "Returns an access and a refresh token"},
	{"/api/auth/token/refresh", fiber.MethodPost, fiber.Map{"refresh": ""}, "Returns a new access token"},
	{"/api/auth/logout", fiber.MethodPost, fiber.Map{"refresh": "(optional)"}, "Revokes the caller's tokens"},
	{"/api/users/me", fiber.MethodGet, nil, "Returns the caller"},
	{"/api/users/me", fiber.MethodDelete, nil, "Deletes the caller's account and everything they own"},
	{"/api/ws", fiber.MethodGet, nil, "Websocket stream of post and comment events"},
}

// GetRoutes handles GET /api/
// @Summary API index
// @Tags meta
// @Produce json
// @Success 200 {array} RouteInfo
// @Router / [get]
func (s *Server) GetRoutes(c *fiber.Ctx) error {
	return c.JSON(routeIndex)
}
