package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/dto"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

func TestCourseServiceCreate(t *testing.T) {
	repo := newFakeCourseRepo(models.Course{ID: "c1", Code: "CS101"})
	svc := NewCourseService(repo, nil, nil)

	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{Code: "ma201", Title: "Linear Algebra", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, "MA201", course.Code)
	assert.Equal(t, 4, course.Credits)

	_, err = svc.Create(context.Background(), dto.CreateCourseRequest{Code: "cs101", Title: "Dup", Credits: 3})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.CreateCourseRequest{Code: "X1", Title: "Zero", Credits: 0})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
