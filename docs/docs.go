// Package docs holds the OpenAPI document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {"get": {"tags": ["meta"], "summary": "API index", "responses": {"200": {"description": "OK"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/auth/token": {"post": {"tags": ["auth"], "summary": "Obtain tokens", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/token/refresh": {"post": {"tags": ["auth"], "summary": "Refresh access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/users/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Current user", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete account", "responses": {"204": {"description": "No Content"}}}
        },
        "/posts": {
            "get": {"tags": ["posts"], "summary": "List posts", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["posts"], "summary": "Create post", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/posts/{id}": {
            "get": {"tags": ["posts"], "summary": "Get post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Update post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Delete post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/posts/{id}/like": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Toggle like", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Remove like", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/posts/{id}/comments": {
            "get": {"tags": ["comments"], "summary": "List comments of a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Comment on a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/posts/{id}/comments/count": {"get": {"tags": ["comments"], "summary": "Count comments of a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/comments": {
            "get": {"tags": ["comments"], "summary": "List comments", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Create comment", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/comments/{id}": {
            "get": {"tags": ["comments"], "summary": "Get comment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Update comment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Delete comment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/profiles": {
            "get": {"tags": ["profiles"], "summary": "List profiles", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["profiles"], "summary": "Create profile", "responses": {"201": {"description": "Created"}}}
        },
        "/profiles/{id}": {
            "get": {"tags": ["profiles"], "summary": "Get profile", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Update profile", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Delete profile", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/ws": {"get": {"security": [{"BearerAuth": []}], "tags": ["realtime"], "summary": "Realtime events", "responses": {"101": {"description": "Switching Protocols"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Dojo API",
	Description:      "Martial arts community API with posts, threaded comments, likes and practitioner profiles",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
