// Package docs provides the generated Swagger specification.
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
                "summary": "Register a new user",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/account": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "List entries",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Create an entry",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/transactions/{txId}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Update an entry",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Delete an entry",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/ledger/day": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Daily ledger",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ledger/month": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Monthly breakdown",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rate": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["rate"],
                "summary": "Current USD rate",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["rate"],
                "summary": "Update USD rate",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sync/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Export state",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sync/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Import state",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/sync/backup": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Download backup",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sync/share": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Create share code",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/sync/share/{code}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sync"],
                "summary": "Redeem share code",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/insights": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["insights"],
                "summary": "Spending insights",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
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
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Daftari Ledger API",
	Description:      "API for a multi-currency personal ledger",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
