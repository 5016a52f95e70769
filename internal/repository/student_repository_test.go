package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

var studentRowColumns = []string{"id", "user_id", "student_number", "full_name", "email", "program", "active", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, student_number, full_name, email, program, active, created_at, updated_at FROM students WHERE active = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(student_number) LIKE $2) ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WithArgs(true, "%ada%").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("s1", nil, "U001", "Ada", "ada@uni.edu", "CS", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE active = $1")).
		WithArgs(true, "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ada", Active: &active, Page: 2, PageSize: 10, SortBy: "full_name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "U001", students[0].StudentNumber)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("s1", "u1", "U001", "Ada", "ada@uni.edu", "CS", true, now, now))

	student, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, student.UserID)
	assert.Equal(t, "u1", *student.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_number = $1 AND id <> $2 LIMIT 1")).
		WithArgs("U001", "s1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByStudentNumber(context.Background(), "U001", "s1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), nil, "U002", "Grace", "grace@uni.edu", "Math", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{StudentNumber: "U002", FullName: "Grace", Email: "grace@uni.edu", Program: "Math", Active: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
