// Package docs 注册 uidgen HTTP 接口的 Swagger 文档
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        },
        "/v1/ids/next": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "Generate ids",
                "parameters": [
                    {"type": "string", "default": "default", "description": "generator name", "name": "generator", "in": "query"},
                    {"type": "integer", "default": 1, "description": "number of ids", "name": "count", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.NextIDsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/v1/ids/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "Parse an id",
                "parameters": [
                    {"type": "string", "description": "decimal, 0x hex or 0b binary id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/core.IDInfo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/v1/generators": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["generators"],
                "summary": "List generators",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/server.GeneratorResponse"}}}
                }
            }
        }
    },
    "definitions": {
        "core.IDInfo": {
            "type": "object",
            "properties": {
                "uid": {"type": "string"},
                "timestamp": {"type": "integer"},
                "datacenterId": {"type": "integer"},
                "workerId": {"type": "integer"},
                "sequence": {"type": "integer"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "gap_ms": {"type": "integer"}
            }
        },
        "server.GeneratorResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "worker_id": {"type": "integer"},
                "datacenter_id": {"type": "integer"},
                "last_timestamp": {"type": "integer"},
                "metrics": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "server.NextIDsResponse": {
            "type": "object",
            "properties": {
                "generator": {"type": "string"},
                "ids": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "uidgen API",
	Description:      "Snowflake 64-bit id generation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
