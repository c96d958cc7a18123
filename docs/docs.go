// Package docs registers the swagger specification for the local API.
// The template is maintained by hand; the surface is small and stable.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "greeting string with server time"}}
            }
        },
        "/exercise/list": {
            "get": {
                "tags": ["exercise"],
                "summary": "List all exercises",
                "produces": ["application/json"],
                "responses": {"200": {"description": "all exercise records"}}
            }
        },
        "/exercise/get/{id}": {
            "get": {
                "tags": ["exercise"],
                "summary": "Get one exercise",
                "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "the exercise record, or an \"Error: ...\" sentinel string"}}
            }
        },
        "/exercise/create": {
            "post": {
                "tags": ["exercise"],
                "summary": "Create an exercise",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "the stored record, with a generated id when omitted"}}
            }
        },
        "/exercise/update": {
            "put": {
                "tags": ["exercise"],
                "summary": "Shallow-merge an update onto an exercise",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "the merged record"},
                    "500": {"description": "sentinel string when the record does not exist"}
                }
            }
        },
        "/exercise/delete": {
            "delete": {
                "tags": ["exercise"],
                "summary": "Delete an exercise by id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "fixed success message, even when nothing matched"}}
            }
        },
        "/user/getUserByEmail/{email}": {
            "get": {
                "tags": ["user"],
                "summary": "Get one user by email",
                "produces": ["application/json"],
                "parameters": [{"name": "email", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "the user record, or an \"Error: ...\" sentinel string"}}
            }
        },
        "/user/updateExerciseTargets": {
            "put": {
                "tags": ["user"],
                "summary": "Replace a user's exercise assignments wholesale",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "the updated user record"},
                    "500": {"description": "sentinel string when the user does not exist"}
                }
            }
        },
        "/files/{name}": {
            "get": {
                "tags": ["media"],
                "summary": "Stream a media file, range-aware",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "Range", "in": "header", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "full file"},
                    "206": {"description": "requested byte span"},
                    "404": {"description": "file not found"}
                }
            }
        },
        "/presignedurl/{uploadId}": {
            "get": {
                "tags": ["media"],
                "summary": "Local stand-in for an object-storage signed URL",
                "produces": ["application/json"],
                "parameters": [{"name": "uploadId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "a url pointing at the local files route"}}
            }
        },
        "/auth/magicLink/authorize": {
            "post": {
                "tags": ["auth"],
                "summary": "Issue a magic-link token for an email",
                "produces": ["application/json"],
                "parameters": [{"name": "email", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "message and callbackUrl embedding the token"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Regain Local API",
	Description:      "Local development API for the Regain rehabilitation exercise app: JSON-file datastore, media serving and magic-link login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
