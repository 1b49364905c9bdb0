// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/agendapay/main.go` after changing handler annotations.
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
        "/payments": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a gateway payment order",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateOrderRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/payments/webhook": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Receive a signed gateway notification",
                "parameters": [
                    {"type": "string", "name": "token", "in": "formData", "required": true},
                    {"type": "string", "name": "s", "in": "formData", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/payments/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Poll the authoritative payment status",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query", "required": true},
                    {"type": "string", "name": "sessionId", "in": "query"},
                    {"type": "string", "name": "commerceOrder", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/payments/return": {
            "get": {
                "tags": ["payments"],
                "summary": "Browser return from the gateway",
                "parameters": [{"type": "string", "name": "token", "in": "query"}],
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/payment-links": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payment-links"],
                "summary": "Create a short payment link",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreatePaymentLinkRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}
            },
            "get": {
                "produces": ["application/json"],
                "tags": ["payment-links"],
                "summary": "Read a payment link",
                "parameters": [{"type": "string", "name": "id", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}, "410": {"description": "Gone"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["payment-links"],
                "summary": "Mark a payment link used or delete it",
                "parameters": [
                    {"type": "string", "name": "id", "in": "query", "required": true},
                    {"type": "boolean", "name": "markAsUsed", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "patch": {
                "produces": ["application/json"],
                "tags": ["payment-links"],
                "summary": "Payment link counters",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payment-links/{id}/order": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payment-links"],
                "summary": "Create a gateway order from a payment link",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}, "410": {"description": "Gone"}}
            }
        }
    },
    "definitions": {
        "dto.CreateOrderRequest": {
            "type": "object",
            "required": ["sessionId", "subject", "amount", "email"],
            "properties": {
                "sessionId": {"type": "string"},
                "subject": {"type": "string"},
                "currency": {"type": "string"},
                "amount": {"type": "integer"},
                "email": {"type": "string"},
                "paymentMethod": {"type": "integer"}
            }
        },
        "dto.CreatePaymentLinkRequest": {
            "type": "object",
            "required": ["patient", "appointment", "subject", "amount"],
            "properties": {
                "version": {"type": "integer"},
                "patient": {"type": "object"},
                "appointment": {"type": "object"},
                "subject": {"type": "string"},
                "currency": {"type": "string"},
                "amount": {"type": "integer"},
                "ttlMinutes": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AgendaPay API",
	Description:      "Payment orders, gateway webhooks and short payment links for appointment bookings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
