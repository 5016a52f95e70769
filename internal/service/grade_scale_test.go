package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeScaleBoundaries(t *testing.T) {
	cases := []struct {
		grade  float64
		points float64
		letter string
	}{
		{100, 4.00, "A"},
		{80, 4.00, "A"},
		{79.99, 3.75, "B+"},
		{75, 3.75, "B+"},
		{74.5, 3.50, "B"},
		{70, 3.50, "B"},
		{69, 3.00, "C+"},
		{65, 3.00, "C+"},
		{64.9, 2.50, "C"},
		{60, 2.50, "C"},
		{59, 2.00, "D+"},
		{55, 2.00, "D+"},
		{54.99, 1.50, "D"},
		{50, 1.50, "D"},
		{49, 1.00, "E"},
		{45, 1.00, "E"},
		{44.99, 0, "F"},
		{0, 0, "F"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.points, GradePoints(tc.grade), "points for %v", tc.grade)
		assert.Equal(t, tc.letter, LetterGrade(tc.grade), "letter for %v", tc.grade)
	}
}

func TestGradeScaleTopAndBottomRanges(t *testing.T) {
	for g := 80.0; g <= 100; g += 0.5 {
		assert.Equal(t, 4.00, GradePoints(g))
		assert.Equal(t, "A", LetterGrade(g))
	}
	for g := 0.0; g < 45; g += 0.5 {
		assert.Equal(t, 0.0, GradePoints(g))
		assert.Equal(t, "F", LetterGrade(g))
	}
}
