// Package docs holds the OpenAPI document served under /swagger.
// Keep it in step with the swag annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/v1/shorten": {
            "post": {
                "description": "Create an anonymous short URL. An existing anonymous mapping of the same URL is returned with 200.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Links"],
                "summary": "Shorten a URL",
                "parameters": [
                    {"description": "URL to shorten", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ShortenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already shortened", "schema": {"$ref": "#/definitions/http.URLResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.URLResponse"}},
                    "400": {"description": "Invalid URL", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/stats/{short_code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Links"],
                "summary": "URL statistics",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "short_code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/analytics/global": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "Global analytics",
                "parameters": [
                    {"maximum": 365, "minimum": 1, "type": "integer", "default": 30, "description": "Window in days", "name": "days", "in": "query"},
                    {"type": "boolean", "description": "Include days without clicks", "name": "fill_zero", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/analytics/{short_code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Analytics"],
                "summary": "URL analytics",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "short_code", "in": "path", "required": true},
                    {"maximum": 365, "minimum": 1, "type": "integer", "default": 30, "description": "Window in days", "name": "days", "in": "query"},
                    {"type": "boolean", "description": "Include days without clicks", "name": "fill_zero", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/qr/{short_code}": {
            "get": {
                "produces": ["image/png"],
                "tags": ["Links"],
                "summary": "QR code of a short URL",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "short_code", "in": "path", "required": true},
                    {"maximum": 1024, "minimum": 64, "type": "integer", "default": 256, "description": "Image size in pixels", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Obtain an access token",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Delete the current account with all its URLs",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/me/urls": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user with URLs",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/auth.ErrorResponse"}}
                }
            }
        },
        "/api/v1/user/shorten": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User URLs"],
                "summary": "Shorten a URL for the current user",
                "parameters": [
                    {"description": "URL to shorten", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ShortenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.URLResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.URLResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/user/urls": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User URLs"],
                "summary": "List the current user's URLs",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"},
                    {"maximum": 100, "type": "integer", "default": 20, "description": "Limit", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/user/urls/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User URLs"],
                "summary": "Update a URL",
                "parameters": [
                    {"type": "integer", "description": "URL id", "name": "id", "in": "path", "required": true},
                    {"description": "New target", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ShortenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.URLResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["User URLs"],
                "summary": "Delete a URL",
                "parameters": [
                    {"type": "integer", "description": "URL id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/user/urls/{id}/clicks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User URLs"],
                "summary": "List click events of a URL",
                "parameters": [
                    {"type": "integer", "description": "URL id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"},
                    {"type": "integer", "description": "Limit", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/user/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["User URLs"],
                "summary": "Analytics of the current user's URLs",
                "parameters": [
                    {"type": "integer", "default": 30, "description": "Window in days", "name": "days", "in": "query"},
                    {"type": "boolean", "description": "Include days without clicks", "name": "fill_zero", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/{short_code}": {
            "get": {
                "tags": ["Redirect"],
                "summary": "Redirect to the original URL",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "short_code", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "Found"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "auth.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "token_type": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "database_status": {"type": "string"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "http.ShortenRequest": {
            "type": "object",
            "properties": {
                "original_url": {"type": "string", "example": "https://example.com/some/long/path"}
            }
        },
        "http.StatsResponse": {
            "type": "object",
            "properties": {
                "clicks": {"type": "integer"},
                "created_at": {"type": "string"},
                "original_url": {"type": "string"},
                "short_code": {"type": "string"}
            }
        },
        "http.URLResponse": {
            "type": "object",
            "properties": {
                "clicks": {"type": "integer"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "original_url": {"type": "string"},
                "short_code": {"type": "string"},
                "short_url": {"type": "string"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Shortlink API",
	Description:      "URL shortener with click analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
