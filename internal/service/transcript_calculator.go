package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
)

type termCourseKey struct {
	courseID     string
	semester     int
	academicYear string
}

// BuildTranscript folds academic records and enrollments into transcript lines and a summary.
// Records come back ordered by academic year descending then semester ascending, keeping
// retrieval order for ties.
func BuildTranscript(records []models.AcademicRecordDetail, enrollments []models.EnrollmentDetail) (dto.TranscriptSummary, []dto.TranscriptRecord) {
	var summary dto.TranscriptSummary
	totalPoints := decimal.Zero
	passedKeys := make(map[termCourseKey]bool, len(records))

	lines := make([]dto.TranscriptRecord, 0, len(records))
	for _, record := range records {
		line := dto.TranscriptRecord{
			RecordID:     record.ID,
			CourseID:     record.CourseID,
			CourseCode:   record.CourseCode,
			CourseTitle:  record.CourseTitle,
			Credits:      record.Credits,
			Status:       record.Status,
			Semester:     record.Semester,
			AcademicYear: record.AcademicYear,
			LetterGrade:  LetterNotGraded,
		}

		if record.Grade != nil {
			grade := *record.Grade
			points := GradePoints(grade)
			line.Grade = &grade
			line.GradePoints = &points
			line.LetterGrade = LetterGrade(grade)

			totalPoints = totalPoints.Add(decimal.NewFromFloat(points).Mul(decimal.NewFromInt(int64(record.Credits))))
			summary.TotalCredits += record.Credits
			summary.GradedCourses++

			switch {
			case record.Status.Passed():
				summary.PassedCourses++
				passedKeys[termCourseKey{record.CourseID, record.Semester, record.AcademicYear}] = true
			case record.Status == models.RecordStatusFailed:
				summary.FailedCourses++
			}
		}

		lines = append(lines, line)
	}

	summary.GPA = ComputeGPA(totalPoints, summary.TotalCredits)

	counted := make(map[termCourseKey]bool, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Status == models.EnrollmentStatusActive || enrollment.Status == models.EnrollmentStatusCompleted {
			summary.CreditsEnrolled += enrollment.Credits
		}
		key := termCourseKey{enrollment.CourseID, enrollment.Semester, enrollment.AcademicYear}
		if passedKeys[key] && !counted[key] {
			counted[key] = true
			summary.TotalCreditsEarned += enrollment.Credits
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].AcademicYear != lines[j].AcademicYear {
			return lines[i].AcademicYear > lines[j].AcademicYear
		}
		return lines[i].Semester < lines[j].Semester
	})

	return summary, lines
}

// ComputeGPA divides credit-weighted points by credits attempted, rounding half away
// from zero to two decimals. No graded credits yields 0.
func ComputeGPA(totalPoints decimal.Decimal, totalCredits int) float64 {
	if totalCredits <= 0 {
		return 0
	}
	return totalPoints.Div(decimal.NewFromInt(int64(totalCredits))).Round(2).InexactFloat64()
}
