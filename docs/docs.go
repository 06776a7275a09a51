// Package docs registers the OpenAPI description served by gin-swagger.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Validation failed or username/email taken", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "500": {"description": "Verification email could not be sent", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/verify-email": {
            "get": {
                "tags": ["auth"],
                "summary": "Confirm an email address",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "query", "name": "token", "required": true, "description": "Verification token"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Invalid verification token", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "401": {"description": "Invalid credentials or email not verified", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/refresh-token": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange a refresh token for a new access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Revoke a refresh token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": false, "schema": {"$ref": "#/definitions/dto.RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/forgot-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Request a password reset link",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.ForgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Set a new password with a reset token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Invalid or expired password reset token", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List users with their role",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "in": "query", "name": "page", "description": "Page, default 1"},
                    {"type": "integer", "in": "query", "name": "limit", "description": "Page size, default 10, max 100"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/auth/users/{id}/role": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Replace a user's role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true, "description": "User ID"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateRoleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "User or role not found", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "List messages",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "in": "query", "name": "page", "description": "Page, default 1"},
                    {"type": "integer", "in": "query", "name": "limit", "description": "Page size, default 10, max 100"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/messages/send": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Send a message",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SendMessageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Recipient not found", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/messages/{id}/read": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Mark a message as read",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true, "description": "Message ID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/messages/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["messages"],
                "summary": "Delete a message",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true, "description": "Message ID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "response.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.RefreshTokenRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "dto.ForgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "dto.ResetPasswordRequest": {
            "type": "object",
            "required": ["newPassword", "token"],
            "properties": {
                "token": {"type": "string"},
                "newPassword": {"type": "string", "minLength": 8, "maxLength": 72}
            }
        },
        "dto.UpdateRoleRequest": {
            "type": "object",
            "required": ["role"],
            "properties": {
                "role": {"type": "string", "enum": ["Super Admin", "Admin", "Normal User"]}
            }
        },
        "dto.SendMessageRequest": {
            "type": "object",
            "required": ["content", "recipientId"],
            "properties": {
                "content": {"type": "string", "maxLength": 2000},
                "recipientId": {"type": "string", "format": "uuid"}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Messaging API",
	Description:      "Authenticated messaging backend: registration with email verification, JWT sessions and direct messages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
