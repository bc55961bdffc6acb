package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SISACAD API",
        "description": "Scheduling and enrollment engine for the academic records system",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Course section placement and validation"},
        {"name": "Enrollments", "description": "Student enrollment workflow"},
        {"name": "Cycles", "description": "Academic cycle calculation"},
        {"name": "Catalog", "description": "Courses, rooms and sections"},
        {"name": "Blocks", "description": "Reusable schedule slot catalog"},
        {"name": "Sections", "description": "Section cascade deletion"},
        {"name": "Prerequisites", "description": "Prerequisite edge management"}
    ],
    "paths": {
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignments for a course within a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Hours mismatch or invalid payload"},
                    "409": {"description": "Room, teacher or slot conflict"}
                }
            }
        },
        "/assignments/{id}": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Re-place an existing assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into an assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already enrolled or schedule conflict"},
                    "412": {"description": "Missing prerequisites"}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove an enrollment and its attendance records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/enrollments/{id}/withdraw": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Withdraw an enrollment, keeping its history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Withdrawn"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/students/{id}/eligible-sections": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List sections a student may enroll in",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/students/{id}/schedule": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get a student's weekly schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/students/{id}/schedule/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export a student's schedule as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/cycles/current": {
            "get": {
                "tags": ["Cycles"],
                "summary": "Compute the current cycle for a start label",
                "parameters": [
                    {"name": "startLabel", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses",
                "parameters": [
                    {"name": "cycle", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/courses/with-prerequisites": {
            "get": {
                "tags": ["Prerequisites"],
                "summary": "List courses that have prerequisites",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/courses/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get one course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/catalog/courses/{id}/prerequisites": {
            "get": {
                "tags": ["Prerequisites"],
                "summary": "List a course's prerequisites",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Prerequisites"],
                "summary": "Delete all prerequisites of a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Removed count"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/catalog/rooms": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List rooms",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/sections": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List sections",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/catalog/teachers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List teachers",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/blocks": {
            "get": {
                "tags": ["Blocks"],
                "summary": "List schedule blocks",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Blocks"],
                "summary": "Register a schedule block",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/blocks/next-code": {
            "get": {
                "tags": ["Blocks"],
                "summary": "Preview the code a new schedule block would receive",
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "hours", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid placement"}
                }
            }
        },
        "/blocks/{id}/cascade": {
            "get": {
                "tags": ["Blocks"],
                "summary": "Preview what deleting a schedule block would remove",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CascadePlan"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/blocks/{id}": {
            "put": {
                "tags": ["Blocks"],
                "summary": "Move a schedule block to a new placement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditScheduleBlockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Duplicate span"}
                }
            },
            "delete": {
                "tags": ["Blocks"],
                "summary": "Delete a schedule block and its dependents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirm", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Deleted with per-category counts"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Dependents exist, confirmation required"}
                }
            }
        },
        "/sections/{id}/cascade": {
            "get": {
                "tags": ["Sections"],
                "summary": "Preview what deleting a section would remove",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CascadePlan"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sections/{id}": {
            "delete": {
                "tags": ["Sections"],
                "summary": "Delete a section and all its dependent records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirm", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Deleted with per-category counts"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Dependents exist, confirmation required"}
                }
            }
        },
        "/prerequisites": {
            "post": {
                "tags": ["Prerequisites"],
                "summary": "Register a prerequisite edge",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePrerequisiteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Self loop or cycle rejected"},
                    "409": {"description": "Edge already exists"}
                }
            }
        },
        "/prerequisites/{id}": {
            "delete": {
                "tags": ["Prerequisites"],
                "summary": "Delete a prerequisite edge",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "KindSpec": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "block_id": {"type": "string"},
                "day": {"type": "string"},
                "start": {"type": "string"}
            }
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "section_id": {"type": "string"},
                "expected_student_count": {"type": "integer"},
                "lecture": {"$ref": "#/definitions/KindSpec"},
                "lab": {"$ref": "#/definitions/KindSpec"}
            }
        },
        "EditAssignmentRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "block_id": {"type": "string"},
                "day": {"type": "string"},
                "start": {"type": "string"},
                "expected_student_count": {"type": "integer"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "assignment_id": {"type": "string"}
            }
        },
        "CreateScheduleBlockRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "start": {"type": "string"},
                "hours": {"type": "integer"}
            }
        },
        "EditScheduleBlockRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "start": {"type": "string"},
                "hours": {"type": "integer"}
            }
        },
        "CreatePrerequisiteRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "required_course_id": {"type": "string"}
            }
        },
        "CascadePlan": {
            "type": "object",
            "properties": {
                "scope": {"type": "object"},
                "attendance_records": {"type": "integer"},
                "enrollments": {"type": "integer"},
                "materials": {"type": "integer"},
                "class_sessions": {"type": "integer"},
                "assignments": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
