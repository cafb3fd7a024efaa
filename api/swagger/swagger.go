package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SecureMath Content API",
        "description": "Content access and assessment integrity API for the SecureMath learning platform",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course browsing for enrolled students"},
        {"name": "Playback", "description": "Signed playback grants"},
        {"name": "Quizzes", "description": "Quiz retrieval and submission"},
        {"name": "Grades", "description": "Grade history and reports"},
        {"name": "Devices", "description": "Registered device registry"},
        {"name": "Enrollments", "description": "Administrative enrollment lifecycle"},
        {"name": "Videos", "description": "Administrative video intake"},
        {"name": "Exports", "description": "Administrative data exports"}
    ],
    "paths": {
        "/student/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List enrolled courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course outline with chapters and lessons",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not enrolled"}
                }
            }
        },
        "/student/courses/{id}/quizzes": {
            "get": {
                "tags": ["Quizzes"],
                "summary": "List published quizzes of a course",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/lessons/{id}/playback": {
            "post": {
                "tags": ["Playback"],
                "summary": "Request a playback grant for a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "X-Device-Fingerprint", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PlaybackGrant"}},
                    "403": {"description": "Not enrolled or device limit exceeded"},
                    "404": {"description": "Lesson not found"}
                }
            }
        },
        "/student/quizzes/{id}": {
            "get": {
                "tags": ["Quizzes"],
                "summary": "Fetch a quiz without answer keys",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Quiz not found or unpublished"}
                }
            }
        },
        "/student/quizzes/{id}/submit": {
            "post": {
                "tags": ["Quizzes"],
                "summary": "Submit quiz answers for grading",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitQuizRequest"}}
                ],
                "responses": {
                    "200": {"description": "Graded", "schema": {"$ref": "#/definitions/SubmissionResult"}},
                    "400": {"description": "Duplicate submission"},
                    "403": {"description": "Not enrolled"}
                }
            }
        },
        "/student/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List graded attempts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/grades/report": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download grade report as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/student/devices": {
            "get": {
                "tags": ["Devices"],
                "summary": "List registered devices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/admin/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Revoke an enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Revoked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/devices/{id}": {
            "delete": {
                "tags": ["Devices"],
                "summary": "Remove a registered device",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Removed"}
                }
            }
        },
        "/admin/videos": {
            "post": {
                "tags": ["Videos"],
                "summary": "Upload a raw source video",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted for transcoding"}
                }
            }
        },
        "/admin/videos/{id}": {
            "get": {
                "tags": ["Videos"],
                "summary": "Transcode status of a video asset",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/videos/{id}/requeue": {
            "post": {
                "tags": ["Videos"],
                "summary": "Requeue a failed video asset for transcoding",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted for transcoding"}
                }
            }
        },
        "/admin/grants": {
            "get": {
                "tags": ["Playback"],
                "summary": "Audit playback grants for a student and lesson",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "required": true},
                    {"name": "lessonId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/quizzes/{id}/attempts/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export quiz attempts as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        }
    },
    "definitions": {
        "SubmitQuizRequest": {
            "type": "object",
            "properties": {
                "answers": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubmittedAnswer"}
                }
            },
            "required": ["answers"]
        },
        "SubmittedAnswer": {
            "type": "object",
            "properties": {
                "question_id": {"type": "string"},
                "response": {"type": "string"}
            },
            "required": ["question_id"]
        },
        "SubmissionResult": {
            "type": "object",
            "properties": {
                "attempt_id": {"type": "string"},
                "score": {"type": "number"},
                "max_score": {"type": "number"},
                "grading_latency_ms": {"type": "integer"}
            }
        },
        "PlaybackGrant": {
            "type": "object",
            "properties": {
                "manifest_url": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "watermark_seed": {"type": "string"},
                "course_id": {"type": "string"}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"}
            },
            "required": ["student_id", "course_id"]
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
