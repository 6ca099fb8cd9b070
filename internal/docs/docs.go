// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"bearer": []}],
    "paths": {
        "/attendance": {
            "post": {
                "tags": ["attendance"],
                "summary": "Mark today's attendance with a photo",
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "photo", "in": "formData", "type": "file", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Attendance"}},
                    "400": {"description": "Invalid photo", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Already marked today", "schema": {"$ref": "#/definitions/Error"}},
                    "413": {"description": "Photo too large", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "tags": ["attendance"],
                "summary": "Whether the signed-in user has marked today",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Today"}}}
            }
        },
        "/attendance/stats": {
            "get": {
                "tags": ["attendance"],
                "summary": "Check-ins per user over a date range",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "to", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["users"],
                "summary": "Profile; id may be \"me\"",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Profile"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/users/{id}/attendance": {
            "get": {
                "tags": ["attendance"],
                "summary": "Check-in history, newest first",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}/attendance.csv": {
            "get": {
                "tags": ["attendance"],
                "summary": "Check-in history as CSV",
                "produces": ["text/csv"],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}/share": {
            "get": {
                "tags": ["share"],
                "summary": "Public profile link",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}/share.png": {
            "get": {
                "tags": ["share"],
                "summary": "Public profile link as a QR code",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["users"],
                "summary": "All users ranked by points",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Leaderboard"}}}
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
                }
            }
        },
        "Attendance": {
            "type": "object",
            "properties": {
                "attendance_id": {"type": "string"},
                "user_id": {"type": "string"},
                "attended_on": {"type": "string", "format": "date"},
                "photo_url": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "Today": {
            "type": "object",
            "properties": {"date": {"type": "string", "format": "date"}, "marked": {"type": "boolean"}}
        },
        "Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "first_name": {"type": "string"},
                "points": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "member_since": {"type": "integer"},
                "attendance_count": {"type": "integer"}
            }
        },
        "LeaderboardEntry": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "user_id": {"type": "string"},
                "full_name": {"type": "string"},
                "first_name": {"type": "string"},
                "points": {"type": "integer"},
                "is_current_user": {"type": "boolean"},
                "is_bottom_two": {"type": "boolean"}
            }
        },
        "Leaderboard": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "current_user_rank": {"type": "integer"},
                "podium": {"type": "array", "items": {"$ref": "#/definitions/LeaderboardEntry"}},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/LeaderboardEntry"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"https"},
	Title:            "Adda attendance API",
	Description:      "Daily photo check-in, points and leaderboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
