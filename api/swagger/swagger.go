package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ExamPro Scheduler API",
        "description": "Exam schedule conflict detection and resource assignment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "ExamSchedule", "description": "Conflict reports, occupancy overview and resource assignment"}
    ],
    "paths": {
        "/exam-schedule/conflicts": {
            "get": {
                "tags": ["ExamSchedule"],
                "summary": "Detect exam schedule conflicts",
                "parameters": [
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["critical", "warning", "info", "all"]}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date range or severity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exam-schedule/conflicts/export": {
            "get": {
                "tags": ["ExamSchedule"],
                "summary": "Download the conflict report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["critical", "warning", "info", "all"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}}
                }
            }
        },
        "/exam-schedule/overview": {
            "get": {
                "tags": ["ExamSchedule"],
                "summary": "List exams with occupancy and proctors",
                "parameters": [
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "room_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Exams with occupancy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/students": {
            "post": {
                "tags": ["ExamSchedule"],
                "summary": "Register students for an exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignStudentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Every student was already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Students registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exam or student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "CAPACITY_EXCEEDED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/proctors": {
            "post": {
                "tags": ["ExamSchedule"],
                "summary": "Assign proctors to an exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignProctorsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Every proctor was already assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Proctors assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exam or proctor not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Proctor double-booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AssignStudentsRequest": {
            "type": "object",
            "required": ["student_ids"],
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "AssignProctorsRequest": {
            "type": "object",
            "required": ["proctors"],
            "properties": {
                "proctors": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "required": ["proctor_id"],
                        "properties": {
                            "proctor_id": {"type": "string"},
                            "role": {"type": "string", "enum": ["main", "assistant"]}
                        }
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
