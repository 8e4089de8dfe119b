package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Counsel4College API",
        "description": "College admissions counseling platform: student profiles, AI college matching, application pipeline, coach portfolio and family linking.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Signup, login and token lifecycle"},
        {"name": "Profile", "description": "Student academic profile"},
        {"name": "Recommendations", "description": "AI college matches and dream colleges"},
        {"name": "College List", "description": "Working list and Kanban application pipeline"},
        {"name": "Coach", "description": "Coach portfolio, drill-downs and AI assistant"},
        {"name": "Notes", "description": "Coach notes and student replies"},
        {"name": "Links", "description": "Family invitations and account linking"},
        {"name": "Admin", "description": "Assignments, users and platform statistics"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}],
                "responses": {
                    "201": {"description": "Account created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Invalid or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "User info"}}
            }
        },
        "/students/me/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Get my academic profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Profile"}, "404": {"description": "No profile yet"}}
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Save my academic profile",
                "description": "A changed dream-college list triggers a match sync.",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Saved profile"}}
            }
        },
        "/students/me/recommendations": {
            "post": {
                "tags": ["Recommendations"],
                "summary": "Generate AI college matches",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Match set"},
                    "422": {"description": "Profile too incomplete"},
                    "502": {"description": "Model unavailable or malformed reply"}
                }
            }
        },
        "/students/me/matches": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "List current matches",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Match set"}}
            },
            "delete": {
                "tags": ["Recommendations"],
                "summary": "Delete AI matches, keeping dream colleges",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Deleted count"}}
            }
        },
        "/students/me/colleges": {
            "get": {
                "tags": ["College List"],
                "summary": "List my colleges",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Entries"}}
            },
            "post": {
                "tags": ["College List"],
                "summary": "Add a college",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Entry created"}, "409": {"description": "Duplicate college"}}
            }
        },
        "/students/me/colleges/stats": {
            "get": {
                "tags": ["College List"],
                "summary": "Pipeline statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Counts by status, priority and source"}}
            }
        },
        "/students/me/colleges/{id}": {
            "put": {
                "tags": ["College List"],
                "summary": "Update an entry",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated entry"}}
            },
            "delete": {
                "tags": ["College List"],
                "summary": "Remove an entry",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/students/me/colleges/{id}/move": {
            "patch": {
                "tags": ["College List"],
                "summary": "Move an entry on the Kanban board",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Moved entry"}}
            }
        },
        "/students/me/colleges/{id}/favorite": {
            "patch": {
                "tags": ["College List"],
                "summary": "Toggle favorite",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated entry"}}
            }
        },
        "/students/me/colleges/{id}/tasks": {
            "put": {
                "tags": ["College List"],
                "summary": "Replace the task checklist",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated entry"}}
            }
        },
        "/students/{studentID}/colleges": {
            "get": {
                "tags": ["College List"],
                "summary": "View a student's colleges",
                "description": "Requires an active coach assignment or an accepted link.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "studentID", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Entries"}, "403": {"description": "No access"}}
            }
        },
        "/students/me/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes shared with me",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Shared notes"}}
            }
        },
        "/students/me/notes/{id}/reply": {
            "post": {
                "tags": ["Notes"],
                "summary": "Reply to a shared note",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Reply created"}, "403": {"description": "Note is not shared"}}
            }
        },
        "/coach/students": {
            "get": {
                "tags": ["Coach"],
                "summary": "Caseload overview",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Portfolio"}}
            }
        },
        "/coach/students/export": {
            "get": {
                "tags": ["Coach"],
                "summary": "Export caseload as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/coach/students/{id}": {
            "get": {
                "tags": ["Coach"],
                "summary": "Per-student drill-down",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Student detail"}, "403": {"description": "Not assigned"}}
            }
        },
        "/coach/students/{id}/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes about a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Notes"}}
            },
            "post": {
                "tags": ["Notes"],
                "summary": "Write a note",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Note created"}}
            }
        },
        "/coach/ai-chat": {
            "post": {
                "tags": ["Coach"],
                "summary": "Ask the coach assistant",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Assistant reply"},
                    "429": {"description": "Model quota exceeded"},
                    "502": {"description": "Model unavailable"}
                }
            }
        },
        "/invitations/validate": {
            "get": {
                "tags": ["Links"],
                "summary": "Validate an invitation token",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Invitation context"}}
            }
        },
        "/invitations/accept": {
            "post": {
                "tags": ["Links"],
                "summary": "Accept an invitation",
                "responses": {
                    "200": {"description": "Account linked, tokens issued"},
                    "410": {"description": "Invitation expired or used"}
                }
            }
        },
        "/links/invitations": {
            "get": {
                "tags": ["Links"],
                "summary": "List my pending invitations",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Pending invitations"}}
            },
            "post": {
                "tags": ["Links"],
                "summary": "Invite a parent or guardian",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Invitation sent"}, "409": {"description": "Already pending or linked"}}
            }
        },
        "/links/students": {
            "get": {
                "tags": ["Links"],
                "summary": "Students linked to my account",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Linked students"}}
            }
        },
        "/admin/assignments": {
            "post": {
                "tags": ["Admin"],
                "summary": "Assign a student to a coach",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Assignment created"}}
            }
        },
        "/admin/assignments/bulk": {
            "post": {
                "tags": ["Admin"],
                "summary": "Bulk-assign students",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Created assignments plus per-student failures"}}
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Platform statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Counts by role, matches and list rows"}}
            }
        },
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unreachable"}}
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "required": ["email", "password", "full_name", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["STUDENT", "COACH", "PARENT"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
