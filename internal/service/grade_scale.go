package service

// LetterNotGraded is reported for records without a numeric grade.
const LetterNotGraded = "N/A"

// PassingGrade is the lowest grade that earns grade points.
const PassingGrade = 45.0

type gradeBand struct {
	min    float64
	points float64
	letter string
}

// gradeScale is ordered from the highest threshold down; the first band whose
// minimum the grade reaches wins.
var gradeScale = []gradeBand{
	{min: 80, points: 4.00, letter: "A"},
	{min: 75, points: 3.75, letter: "B+"},
	{min: 70, points: 3.50, letter: "B"},
	{min: 65, points: 3.00, letter: "C+"},
	{min: 60, points: 2.50, letter: "C"},
	{min: 55, points: 2.00, letter: "D+"},
	{min: 50, points: 1.50, letter: "D"},
	{min: PassingGrade, points: 1.00, letter: "E"},
}

var failingBand = gradeBand{min: 0, points: 0, letter: "F"}

func bandFor(grade float64) gradeBand {
	for _, band := range gradeScale {
		if grade >= band.min {
			return band
		}
	}
	return failingBand
}

// GradePoints maps a 0-100 grade to its grade-point value.
func GradePoints(grade float64) float64 {
	return bandFor(grade).points
}

// LetterGrade maps a 0-100 grade to its letter.
func LetterGrade(grade float64) string {
	return bandFor(grade).letter
}
