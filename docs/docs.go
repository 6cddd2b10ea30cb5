// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate it with `swag init -g cmd/server/main.go` after changing the
// handler annotations.
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Admin login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/api.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/competitions": {
            "get": {
                "tags": ["competitions"],
                "summary": "List competitions",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["competitions"],
                "summary": "Create competition",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/competitions/{id}": {
            "get": {
                "tags": ["competitions"],
                "summary": "Get competition",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["competitions"],
                "summary": "Update competition",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["competitions"],
                "summary": "Delete competition and its contestants",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/competitions/{id}/contestants": {
            "get": {
                "tags": ["contestants"],
                "summary": "List active contestants of a competition",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/competitions/{id}/eligibility": {
            "get": {
                "tags": ["votes"],
                "summary": "Remaining votes for the caller",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "X-Voter-ID", "in": "header"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/competitions/{id}/votes": {
            "post": {
                "tags": ["votes"],
                "summary": "Cast a vote",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "X-Voter-ID", "in": "header"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/api.voteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "402": {"description": "Payment Required"},
                    "409": {"description": "Conflict"},
                    "429": {"description": "Too Many Requests"}
                }
            }
        },
        "/contestants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["contestants"],
                "summary": "List contestants",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["contestants"],
                "summary": "Create contestant",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/contestants/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["contestants"],
                "summary": "Get contestant",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["contestants"],
                "summary": "Update contestant",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["contestants"],
                "summary": "Delete contestant",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/competitions/{id}/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Competition statistics",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Admin dashboard",
                "parameters": [{"type": "string", "name": "competition_id", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["stats"],
                "summary": "Contestant vote shares",
                "parameters": [{"type": "string", "name": "competition_id", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Transaction log",
                "parameters": [
                    {"type": "string", "name": "competition_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "method", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/transactions/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Transaction counts by status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/transactions/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Export the transaction log as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "api.loginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "api.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "api.voteRequest": {
            "type": "object",
            "properties": {
                "contestant_id": {"type": "string"},
                "amount": {"type": "number"},
                "payment": {
                    "type": "object",
                    "properties": {
                        "method": {"type": "string"},
                        "phone": {"type": "string"},
                        "card_number": {"type": "string"},
                        "card_expiry": {"type": "string"},
                        "card_cvv": {"type": "string"},
                        "card_holder": {"type": "string"}
                    }
                }
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Competition Voting API",
	Description:      "Competitions, contestants, free and paid voting with admin reporting",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
