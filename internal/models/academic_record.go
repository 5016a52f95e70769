package models

import "time"

// RecordStatus describes how far a course attempt has progressed.
type RecordStatus string

const (
	RecordStatusInProgress RecordStatus = "IN_PROGRESS"
	RecordStatusPassed     RecordStatus = "PASSED"
	RecordStatusCompleted  RecordStatus = "COMPLETED"
	RecordStatusFailed     RecordStatus = "FAILED"
)

// Valid reports whether s is a known record status.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordStatusInProgress, RecordStatusPassed, RecordStatusCompleted, RecordStatusFailed:
		return true
	}
	return false
}

// Passed treats COMPLETED as a synonym of PASSED.
func (s RecordStatus) Passed() bool {
	return s == RecordStatusPassed || s == RecordStatusCompleted
}

// AcademicRecord stores the outcome of a student's attempt at a course in a term.
type AcademicRecord struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	Grade        *float64     `db:"grade" json:"grade"`
	Status       RecordStatus `db:"status" json:"status"`
	Semester     int          `db:"semester" json:"semester"`
	AcademicYear string       `db:"academic_year" json:"academic_year"`
	PostedBy     *string      `db:"posted_by" json:"posted_by,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// AcademicRecordDetail joins the course attributes the transcript needs.
type AcademicRecordDetail struct {
	AcademicRecord
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
	Credits     int    `db:"credits" json:"credits"`
}
