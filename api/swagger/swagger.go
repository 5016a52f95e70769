package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Academic Records API",
        "description": "Student records, transcripts and tuition finance",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login, token refresh and password management"},
        {"name": "Students", "description": "Student profiles"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Enrollments", "description": "Course enrollment per term"},
        {"name": "Academic Records", "description": "Grade posting"},
        {"name": "Transcripts", "description": "Transcript views and exports"},
        {"name": "Finance", "description": "Fees, payments and ledgers"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for a token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/transcript": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Get a student's transcript",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TranscriptEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/transcript/export": {
            "post": {
                "tags": ["Transcripts"],
                "summary": "Export a transcript as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TranscriptExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Download an exported transcript through a signed link",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/finance": {
            "get": {
                "tags": ["Finance"],
                "summary": "Get a student's fee ledger",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FinanceEnvelope"}}
                }
            }
        },
        "/me/transcript": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Get the caller's own transcript",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TranscriptEnvelope"}}
                }
            }
        },
        "/me/finance": {
            "get": {
                "tags": ["Finance"],
                "summary": "Get the caller's own fee ledger",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/FinanceEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-records": {
            "post": {
                "tags": ["Academic Records"],
                "summary": "Post or update a grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PostGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees": {
            "post": {
                "tags": ["Finance"],
                "summary": "Create a fee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/finance/payments": {
            "post": {
                "tags": ["Finance"],
                "summary": "Record a payment against a fee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Replayed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid amount or fee already paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate reference or request in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["code", "title", "credits"],
            "properties": {
                "code": {"type": "string"},
                "title": {"type": "string"},
                "credits": {"type": "integer"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["studentId", "courseId", "semester", "academicYear"],
            "properties": {
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "semester": {"type": "integer"},
                "academicYear": {"type": "string"}
            }
        },
        "PostGradeRequest": {
            "type": "object",
            "required": ["studentId", "courseId", "semester", "academicYear"],
            "properties": {
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "semester": {"type": "integer"},
                "academicYear": {"type": "string"},
                "grade": {"type": "number"},
                "status": {"type": "string", "enum": ["IN_PROGRESS", "PASSED", "FAILED", "COMPLETED"]}
            }
        },
        "CreateFeeRequest": {
            "type": "object",
            "required": ["studentId", "amount", "dueDate", "feeType", "academicYear"],
            "properties": {
                "studentId": {"type": "string"},
                "amount": {"type": "string"},
                "dueDate": {"type": "string", "format": "date-time"},
                "feeType": {"type": "string"},
                "academicYear": {"type": "string"},
                "semester": {"type": "integer"},
                "description": {"type": "string"}
            }
        },
        "SubmitPaymentRequest": {
            "type": "object",
            "required": ["feeId", "amount", "paymentMethod", "reference"],
            "properties": {
                "feeId": {"type": "string"},
                "amount": {"type": "string"},
                "paymentMethod": {"type": "string"},
                "reference": {"type": "string"},
                "notes": {"type": "string"},
                "paymentDate": {"type": "string", "format": "date-time"}
            }
        },
        "TranscriptExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "TranscriptRecord": {
            "type": "object",
            "properties": {
                "recordId": {"type": "string"},
                "courseId": {"type": "string"},
                "courseCode": {"type": "string"},
                "courseTitle": {"type": "string"},
                "credits": {"type": "integer"},
                "grade": {"type": "number"},
                "gradePoints": {"type": "number"},
                "letterGrade": {"type": "string"},
                "status": {"type": "string"},
                "semester": {"type": "integer"},
                "academicYear": {"type": "string"}
            }
        },
        "TranscriptSummary": {
            "type": "object",
            "properties": {
                "gpa": {"type": "number"},
                "totalCredits": {"type": "integer"},
                "totalCreditsEarned": {"type": "integer"},
                "creditsEnrolled": {"type": "integer"},
                "gradedCourses": {"type": "integer"},
                "passedCourses": {"type": "integer"},
                "failedCourses": {"type": "integer"}
            }
        },
        "Transcript": {
            "type": "object",
            "properties": {
                "student": {"type": "object"},
                "summary": {"$ref": "#/definitions/TranscriptSummary"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/TranscriptRecord"}},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "FinanceStats": {
            "type": "object",
            "properties": {
                "totalFees": {"type": "string"},
                "totalPaid": {"type": "string"},
                "totalRemaining": {"type": "string"},
                "overdueAmount": {"type": "string"},
                "paidFees": {"type": "integer"},
                "pendingFees": {"type": "integer"},
                "overdueFees": {"type": "integer"}
            }
        },
        "Finance": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "fees": {"type": "array", "items": {"type": "object"}},
                "payments": {"type": "array", "items": {"type": "object"}},
                "stats": {"$ref": "#/definitions/FinanceStats"}
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
        },
        "TranscriptEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Transcript"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        },
        "FinanceEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Finance"},
                "error": {"$ref": "#/definitions/APIError"}
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
