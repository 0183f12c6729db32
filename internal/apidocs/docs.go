// Package apidocs registers the OpenAPI document for the LoftLoot HTTP API
// with swag so the Swagger UI can serve it. Keep it in step with the
// handler annotations in internal/catalog and internal/server.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/catalog/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.ProductListResponse"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get product",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Bad id", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/products/{id}/related": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Related products",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 4, "description": "Maximum results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Search products",
                "parameters": [
                    {"type": "string", "description": "Free-text query", "name": "q", "in": "query"},
                    {"type": "string", "description": "Collection or All", "name": "collection", "in": "query"},
                    {"type": "string", "description": "Decade (e.g. 1990s) or All", "name": "decade", "in": "query"},
                    {"type": "string", "description": "Type or All", "name": "type", "in": "query"},
                    {"type": "number", "description": "Inclusive lower price bound", "name": "min_price", "in": "query"},
                    {"type": "number", "description": "Inclusive upper price bound", "name": "max_price", "in": "query"},
                    {"type": "boolean", "description": "Only in-stock products", "name": "in_stock", "in": "query"},
                    {"type": "string", "default": "latest", "description": "latest, price-low, price-high, name-asc, name-desc", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "Maximum results (0 = all)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad parameter", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/suggest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Suggest",
                "parameters": [
                    {"type": "string", "description": "Partial query", "name": "q", "in": "query"},
                    {"type": "boolean", "description": "Only in-stock products", "name": "in_stock", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad parameter", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/suggest/live": {
            "get": {
                "tags": ["catalog"],
                "summary": "Live suggestions",
                "description": "Websocket. Send {seq, query, in_stock_only} frames; answers carry the same seq.",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        },
        "/catalog/filters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Filter availability",
                "parameters": [
                    {"type": "string", "description": "Collection or All", "name": "collection", "in": "query"},
                    {"type": "string", "description": "Decade or All", "name": "decade", "in": "query"},
                    {"type": "string", "description": "Type or All", "name": "type", "in": "query"},
                    {"type": "boolean", "description": "Only in-stock products", "name": "in_stock", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad parameter", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/facets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Facets",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/catalog/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Catalog status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/catalog/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Reload catalog",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "403": {"description": "Not an admin token", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Build failed", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "502": {"description": "Feed unavailable or malformed", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "definitions": {
        "catalog.ProductListResponse": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "count": {"type": "integer"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "collection": {"type": "string"},
                "type": {"type": "string"},
                "decade": {"type": "string"},
                "price": {"type": "number"},
                "stock": {"type": "integer"},
                "is_sold": {"type": "boolean"},
                "related_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "server.Problem": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LoftLoot API",
	Description:      "Catalog relevance engine: search, live suggestions, filter availability and related products.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
