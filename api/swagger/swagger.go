package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GradeFlow API",
        "description": "Grade approval workflow and transcript aggregation service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grades", "description": "Assessment score ledger and section summaries"},
        {"name": "Workflow", "description": "Grade sheet approval state machine"},
        {"name": "Transcripts", "description": "Published per-student transcripts"},
        {"name": "Attendance", "description": "Attendance records and rate summaries"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/sections/{id}/grades/bulk": {
            "post": {
                "tags": ["Grades"],
                "summary": "Bulk submit assessment scores for a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkGradesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "409": {"description": "Grade sheet not editable"},
                    "422": {"description": "Unknown enrollment in batch"}
                }
            }
        },
        "/sections/{id}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List the raw assessment score ledger for a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/grades/summary": {
            "get": {
                "tags": ["Grades"],
                "summary": "Aggregated per-student percentages and letter grades",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Section not found"}
                }
            }
        },
        "/sections/{id}/grades/summary/export": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download the section grade summary as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV attachment"}
                }
            }
        },
        "/sections/{id}/workflow": {
            "post": {
                "tags": ["Workflow"],
                "summary": "Apply an approval workflow action to a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role not allowed for this action"},
                    "409": {"description": "Illegal transition for current status"}
                }
            },
            "get": {
                "tags": ["Workflow"],
                "summary": "Current workflow state and transition history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Section has no grade sheet"}
                }
            }
        },
        "/sections/{id}/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Bulk record attendance for a section on a date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "422": {"description": "Unknown enrollment in batch"}
                }
            }
        },
        "/students/{id}/transcript": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Chronological transcript of published sections",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/students/{id}/transcript/export": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Download the transcript as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF attachment"}
                }
            }
        },
        "/enrollments/{id}/attendance/summary": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance counters and rate for an enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Enrollment not found"}
                }
            }
        }
    },
    "definitions": {
        "BulkGradesRequest": {
            "type": "object",
            "required": ["entries"],
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BulkGradeEntry"}
                }
            }
        },
        "BulkGradeEntry": {
            "type": "object",
            "required": ["enrollment_id", "assessment_type", "assessment_name", "score", "max_score"],
            "properties": {
                "enrollment_id": {"type": "string"},
                "assessment_type": {"type": "string", "enum": ["QUIZ", "ASSIGNMENT", "MIDTERM", "FINAL", "PROJECT"]},
                "assessment_name": {"type": "string"},
                "score": {"type": "number"},
                "max_score": {"type": "number"},
                "weight": {"type": "number"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["submit", "mark_review", "approve", "reject", "publish"]},
                "reason": {"type": "string"}
            }
        },
        "BulkAttendanceRequest": {
            "type": "object",
            "required": ["date", "records"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BulkAttendanceEntry"}
                }
            }
        },
        "BulkAttendanceEntry": {
            "type": "object",
            "required": ["enrollment_id", "status"],
            "properties": {
                "enrollment_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE", "EXCUSED"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
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
