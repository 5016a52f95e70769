package dto

import "github.com/noah-isme/uni-academic-api/internal/models"

// CreateStudentRequest captures POST /students payload.
type CreateStudentRequest struct {
	UserID        *string `json:"userId,omitempty" validate:"omitempty,uuid"`
	StudentNumber string  `json:"studentNumber" validate:"required,max=32"`
	FullName      string  `json:"fullName" validate:"required,max=128"`
	Email         string  `json:"email" validate:"required,email"`
	Program       string  `json:"program" validate:"required,max=128"`
}

// UpdateStudentRequest captures PUT /students/:id payload.
type UpdateStudentRequest struct {
	UserID        *string `json:"userId,omitempty" validate:"omitempty,uuid"`
	StudentNumber string  `json:"studentNumber" validate:"required,max=32"`
	FullName      string  `json:"fullName" validate:"required,max=128"`
	Email         string  `json:"email" validate:"required,email"`
	Program       string  `json:"program" validate:"required,max=128"`
	Active        *bool   `json:"active,omitempty"`
}

// CreateCourseRequest captures POST /courses payload.
type CreateCourseRequest struct {
	Code    string `json:"code" validate:"required,max=32"`
	Title   string `json:"title" validate:"required,max=255"`
	Credits int    `json:"credits" validate:"required,min=1,max=30"`
}

// EnrollRequest captures POST /enrollments payload.
type EnrollRequest struct {
	StudentID    string `json:"studentId" validate:"required"`
	CourseID     string `json:"courseId" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1"`
	AcademicYear string `json:"academicYear" validate:"required,max=16"`
}

// PostGradeRequest captures POST /academic-records payload.
type PostGradeRequest struct {
	StudentID    string              `json:"studentId" validate:"required"`
	CourseID     string              `json:"courseId" validate:"required"`
	Semester     int                 `json:"semester" validate:"required,min=1"`
	AcademicYear string              `json:"academicYear" validate:"required,max=16"`
	Grade        *float64            `json:"grade,omitempty" validate:"omitempty,min=0,max=100"`
	Status       models.RecordStatus `json:"status,omitempty"`
}
