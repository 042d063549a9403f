// Package docs holds the OpenAPI description served by the gateway under
// /swagger. Regenerate with swag init -g cmd/tigertix/main.go.
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
        "/api/admin/events": {
            "post": {
                "tags": ["admin"],
                "summary": "Create event",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.EventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Event"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/admin/events/{id}": {
            "put": {
                "tags": ["admin"],
                "summary": "Update event",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "id", "in": "path", "required": true},
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Event"}},
                    "400": {"description": "invalid input or tickets_total below tickets_sold", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/client/events": {
            "get": {
                "tags": ["client"],
                "summary": "List events",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Event"}}}
                }
            }
        },
        "/api/client/events/stream": {
            "get": {
                "description": "Server-Sent Events carrying the ids of events whose counts changed. Clients re-read the event to learn its counts.",
                "produces": ["text/event-stream"],
                "tags": ["client"],
                "summary": "Stream event changes",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/client/events/{id}": {
            "get": {
                "tags": ["client"],
                "summary": "Get event",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Event"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/client/events/{id}/purchase": {
            "post": {
                "tags": ["client"],
                "summary": "Purchase one ticket",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "replays the first successful response", "name": "Idempotency-Key", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.PurchaseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "sold out", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/llm/parse": {
            "post": {
                "description": "Extracts an event name and ticket count from free text. Never sells tickets.",
                "tags": ["llm"],
                "summary": "Interpret a booking request",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.ParseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/assistant.ParseResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "503": {"description": "language model not configured", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/llm/confirm": {
            "post": {
                "description": "Books tickets for an event named (substring match) or identified by id. All tickets are sold or none.",
                "tags": ["llm"],
                "summary": "Confirm a booking",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.ConfirmRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/assistant.ConfirmResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpgin.CapacityErrorResponse"}}
                }
            }
        },
        "/api/llm/chat": {
            "post": {
                "tags": ["llm"],
                "summary": "Chat with the booking assistant",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/assistant.ChatReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "503": {"description": "language model not configured", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpgin.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "email already registered", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.SessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.MessageResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/api/auth/profile": {
            "get": {
                "tags": ["auth"],
                "summary": "Session profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.ProfileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "tickets_total": {"type": "integer"},
                "tickets_sold": {"type": "integer"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.Interpretation": {
            "type": "object",
            "properties": {
                "event": {"type": "string"},
                "tickets": {"type": "integer"}
            }
        },
        "domain.ChatContext": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["greet", "list", "parse", "confirm"]},
                "event": {"type": "string"},
                "tickets": {"type": "integer"}
            }
        },
        "assistant.ParseResult": {
            "type": "object",
            "properties": {
                "parsed": {"$ref": "#/definitions/domain.Interpretation"},
                "match": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "assistant.ConfirmResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "updated": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "assistant.ChatReply": {
            "type": "object",
            "properties": {
                "reply": {"type": "string"},
                "context": {"$ref": "#/definitions/domain.ChatContext"},
                "updated": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "httpgin.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "httpgin.CapacityErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "available": {"type": "integer"}
            }
        },
        "httpgin.EventRequest": {
            "type": "object",
            "required": ["tickets_total"],
            "properties": {
                "name": {"type": "string"},
                "date": {"type": "string"},
                "tickets_total": {"type": "integer"}
            }
        },
        "httpgin.PurchaseResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string", "enum": ["OK", "NOT_FOUND", "SOLD_OUT", "INSUFFICIENT"]},
                "event": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "httpgin.ParseRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "httpgin.ConfirmRequest": {
            "type": "object",
            "properties": {
                "event": {"type": "string"},
                "event_id": {"type": "integer"},
                "tickets": {"type": "integer"}
            }
        },
        "httpgin.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "context": {"$ref": "#/definitions/domain.ChatContext"}
            }
        },
        "httpgin.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "httpgin.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "httpgin.SessionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"},
                "token": {"type": "string"}
            }
        },
        "httpgin.UserResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "httpgin.ProfileResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/httpgin.ProfileUser"}
            }
        },
        "httpgin.ProfileUser": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"}
            }
        },
        "httpgin.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TigerTix API",
	Description:      "Campus event ticketing: event administration, purchases, LLM-assisted booking and accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
