package dto

import (
	"time"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

// TranscriptStudent identifies whose transcript is being shown.
type TranscriptStudent struct {
	ID            string `json:"id"`
	StudentNumber string `json:"studentNumber"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Program       string `json:"program"`
}

// TranscriptSummary holds the aggregate academic standing of a student.
type TranscriptSummary struct {
	GPA                float64 `json:"gpa"`
	TotalCredits       int     `json:"totalCredits"`
	TotalCreditsEarned int     `json:"totalCreditsEarned"`
	CreditsEnrolled    int     `json:"creditsEnrolled"`
	GradedCourses      int     `json:"gradedCourses"`
	PassedCourses      int     `json:"passedCourses"`
	FailedCourses      int     `json:"failedCourses"`
}

// TranscriptRecord is a single course line on a transcript.
type TranscriptRecord struct {
	RecordID     string              `json:"recordId"`
	CourseID     string              `json:"courseId"`
	CourseCode   string              `json:"courseCode"`
	CourseTitle  string              `json:"courseTitle"`
	Credits      int                 `json:"credits"`
	Grade        *float64            `json:"grade"`
	GradePoints  *float64            `json:"gradePoints"`
	LetterGrade  string              `json:"letterGrade"`
	Status       models.RecordStatus `json:"status"`
	Semester     int                 `json:"semester"`
	AcademicYear string              `json:"academicYear"`
}

// TranscriptResponse is returned by the transcript endpoints.
type TranscriptResponse struct {
	Student     TranscriptStudent  `json:"student"`
	Summary     TranscriptSummary  `json:"summary"`
	Records     []TranscriptRecord `json:"records"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// TranscriptExportRequest selects the export format.
type TranscriptExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// TranscriptExportResponse carries the signed download link.
type TranscriptExportResponse struct {
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
