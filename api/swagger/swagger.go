package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduSpark Platform API",
        "description": "School management backend: registrations, allocations, dashboards and reporting",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token verification"},
        {"name": "Registrations", "description": "Admin review of registration requests"},
        {"name": "Users", "description": "Account management"},
        {"name": "Dashboard", "description": "Role-specific aggregated stats"},
        {"name": "Allocations", "description": "Teaching assignments and student placement"},
        {"name": "Assignments", "description": "Coursework and progress"},
        {"name": "Attendance", "description": "Session marks and history"},
        {"name": "Events", "description": "School calendar"},
        {"name": "AI", "description": "Guarded AI assistant"},
        {"name": "Exports", "description": "Downloadable reports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Submit a registration request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/verify": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Verify the current token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registration-requests": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registration requests",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registration-requests/{id}/approve": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Approve a registration request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/registration-requests/{id}/reject": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Reject a registration request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List user accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/users/{id}/deactivate": {
            "put": {
                "tags": ["Users"],
                "summary": "Deactivate an account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/users/{id}/reactivate": {
            "put": {
                "tags": ["Users"],
                "summary": "Reactivate an account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin dashboard summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/attendance": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Filtered attendance rate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "integer"},
                    {"name": "classId", "in": "query", "type": "integer"},
                    {"name": "range", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/tool-usage": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "AI tool usage counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/activity-trends": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Registration trend series",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/activities": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Today's activity feed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "integer"},
                    {"name": "classId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/teacher-assignments": {
            "get": {
                "tags": ["Allocations"],
                "summary": "List teaching assignments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/assign-teacher": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Assign a teacher to a class and course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/teacher-assignments/{id}": {
            "put": {
                "tags": ["Allocations"],
                "summary": "Update a teaching assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Allocations"],
                "summary": "Remove a teaching assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/allocate-student": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Place a student in a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateStudentRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/student-allocations/{id}": {
            "delete": {
                "tags": ["Allocations"],
                "summary": "Remove a student's class placement",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teacher/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List the teacher's assignments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create an assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark a class session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teacher/exports/attendance": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an attendance summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/student/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Student dashboard summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/upcoming": {
            "get": {
                "tags": ["Events"],
                "summary": "List upcoming events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ai/validate": {
            "post": {
                "tags": ["AI"],
                "summary": "Ask the AI assistant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ai/lesson-plan": {
            "post": {
                "tags": ["AI"],
                "summary": "Generate a lesson plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonPlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "teacher"]},
                "fullName": {"type": "string"},
                "contactNumber": {"type": "string"}
            },
            "required": ["email", "password", "role", "fullName"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "AssignTeacherRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "integer"},
                "classId": {"type": "integer"},
                "courseId": {"type": "integer"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            },
            "required": ["teacherId", "classId", "courseId"]
        },
        "AllocateStudentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "classId": {"type": "integer"}
            },
            "required": ["studentId", "classId"]
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "classId": {"type": "integer"},
                "courseId": {"type": "integer"},
                "dueDate": {"type": "string"}
            },
            "required": ["title", "classId", "courseId", "dueDate"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "classCourseId": {"type": "integer"},
                "date": {"type": "string"},
                "marks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudentMark"}
                }
            },
            "required": ["classCourseId", "marks"]
        },
        "StudentMark": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "status": {"type": "integer"}
            },
            "required": ["studentId"]
        },
        "AskRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string"}
            },
            "required": ["prompt"]
        },
        "LessonPlanRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "gradeLevel": {"type": "string"},
                "topic": {"type": "string"},
                "duration": {"type": "integer"},
                "standards": {"type": "string"},
                "additionalNotes": {"type": "string"}
            },
            "required": ["subject", "gradeLevel", "topic", "duration"]
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
                "details": {"type": "string"}
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
