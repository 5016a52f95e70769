package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// Enrollment captures a student's registration to a course within a term.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	CourseID     string           `db:"course_id" json:"course_id"`
	Semester     int              `db:"semester" json:"semester"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt   time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with course info.
type EnrollmentDetail struct {
	Enrollment
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
	Credits     int    `db:"credits" json:"credits"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID    string
	CourseID     string
	AcademicYear string
	Status       EnrollmentStatus
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
