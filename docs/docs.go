// Package docs registers the OpenAPI document served under /swagger.
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
        "/parts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Compiles field filters into a backend query, groups instances by inventory item and annotates totals.",
                "produces": ["application/json"],
                "tags": ["parts"],
                "summary": "Search inventoried part instances",
                "parameters": [
                    {"type": "string", "description": "Comma separated keywords, ! or - excludes", "name": "search", "in": "query"},
                    {"type": "string", "description": "and | or", "name": "logicalOperator", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PartsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/parts-client-side": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Fetches without a result cap and filters by free-text search only.",
                "produces": ["application/json"],
                "tags": ["parts"],
                "summary": "List every inventoried part instance",
                "parameters": [
                    {"type": "string", "description": "Comma separated keywords, ! or - excludes", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PartsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/m_Inventory": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Forwards the JSON body to the backend and relays its status, Location header and body.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Create an inventory item",
                "parameters": [
                    {"type": "string", "description": "return=minimal suppresses the response body", "name": "Prefer", "in": "header"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/m_Instance/{id}/spare-value": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Update an instance spare value",
                "parameters": [
                    {"type": "string", "description": "Instance id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "return=minimal suppresses the response body", "name": "Prefer", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/attachments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["attachments"],
                "summary": "Upload an attachment",
                "parameters": [
                    {"type": "file", "description": "File to store", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.Attachment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/attachments/{key}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["attachments"],
                "summary": "Get a download URL for an attachment",
                "parameters": [
                    {"type": "string", "description": "Attachment key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["attachments"],
                "summary": "Delete an attachment",
                "parameters": [
                    {"type": "string", "description": "Attachment key", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Not ready until the backend probe has succeeded. Rate limiter outages only degrade the status.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ReadinessStatus"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ReadinessStatus"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {}
            }
        },
        "models.PartsResponse": {
            "type": "object",
            "properties": {
                "value": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": true,
                        "properties": {
                            "total": {"type": "number"},
                            "inUse": {"type": "number"},
                            "spare": {"type": "number"},
                            "generalInventory": {"type": "boolean"},
                            "_matches": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
                        }
                    }
                }
            }
        },
        "services.Attachment": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "file_name": {"type": "string"},
                "content_type": {"type": "string"},
                "size": {"type": "integer"}
            }
        },
        "handlers.ReadinessStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}},
                "backend": {
                    "type": "object",
                    "properties": {
                        "healthy": {"type": "boolean"},
                        "checked": {"type": "boolean"},
                        "checked_at": {"type": "string"},
                        "error": {"type": "string"}
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Parts Portal API",
	Description:      "Inventory parts search and filtering in front of the OData inventory backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
