// Package docs registers the OpenAPI description of the console API with swag.
// Regenerate with: swag init -g internal/api/router.go -o docs
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
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Already signed in", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.logoutResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard",
                "parameters": [
                    {"type": "string", "description": "Matches id, client or description", "name": "search", "in": "query"},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dashboardResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Matches id, client or description", "name": "search", "in": "query"},
                    {"type": "string", "description": "all, aberta, em_andamento, concluida, cancelada", "name": "status", "in": "query"},
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.orderPageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create order",
                "parameters": [
                    {
                        "description": "Order",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.createOrderRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.orderMutationResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Order detail",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.orderDetailResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/orders/{id}/check-in": {
            "post": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Check in",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.orderMutationResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/orders/{id}/check-out": {
            "post": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Check out",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.orderMutationResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/reports/daily": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Daily reports",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "dateFrom", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "dateTo", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dailyReportResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.usersResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/users/technicians": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List technicians",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.usersResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.DailyReport": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "totalOrders": {"type": "integer"},
                "openOrders": {"type": "integer"},
                "inProgressOrders": {"type": "integer"},
                "completedOrders": {"type": "integer"},
                "cancelledOrders": {"type": "integer"},
                "completionRate": {"type": "number"}
            }
        },
        "domain.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "cliente": {"type": "string"},
                "descricao": {"type": "string"},
                "status": {"type": "string", "enum": ["aberta", "em_andamento", "concluida", "cancelada"]},
                "data_criacao": {"type": "string"},
                "data_atualizacao": {"type": "string"},
                "data_conclusao": {"type": "string"},
                "criado_por_id": {"type": "string"},
                "responsavel_id": {"type": "string"},
                "criadoPor": {"$ref": "#/definitions/domain.UserSummary"},
                "responsavel": {"$ref": "#/definitions/domain.UserSummary"}
            }
        },
        "domain.TimelineEvent": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["created", "assigned", "status_change", "completed", "cancelled"]},
                "description": {"type": "string"},
                "at": {"type": "string"},
                "actor": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nome": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "agent", "viewer"]},
                "ativo": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nome": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "redirect": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.notification": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"},
                "redirect": {"type": "string"},
                "notification": {"$ref": "#/definitions/handler.notification"}
            }
        },
        "handler.logoutResponse": {
            "type": "object",
            "properties": {
                "redirect": {"type": "string"},
                "notification": {"$ref": "#/definitions/handler.notification"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "handler.usersResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/domain.User"}}
            }
        },
        "handler.orderPageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.Order"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handler.orderDetailResponse": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/domain.Order"},
                "status_label": {"type": "string"},
                "timeline": {"type": "array", "items": {"$ref": "#/definitions/domain.TimelineEvent"}},
                "can_manage": {"type": "boolean"}
            }
        },
        "handler.createOrderRequest": {
            "type": "object",
            "required": ["cliente", "descricao"],
            "properties": {
                "cliente": {"type": "string", "maxLength": 200},
                "descricao": {"type": "string", "maxLength": 2000},
                "responsavel_id": {"type": "string"}
            }
        },
        "handler.orderMutationResponse": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/domain.Order"},
                "notification": {"$ref": "#/definitions/handler.notification"}
            }
        },
        "handler.dailyReportResponse": {
            "type": "object",
            "properties": {
                "reports": {"type": "array", "items": {"$ref": "#/definitions/domain.DailyReport"}}
            }
        },
        "handler.dashboardResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"},
                "orders": {"$ref": "#/definitions/handler.orderPageResponse"},
                "today": {"$ref": "#/definitions/domain.DailyReport"},
                "as_of": {"type": "string"}
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
	Title:            "Orders Console API",
	Description:      "Session-backed console over the service-order REST API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
