package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterRepositoryGetSection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_code", "course_title", "section_code", "semester_id", "teacher_id", "credits", "created_at"}).
		AddRow("sec1", "MATH101", "Calculus I", "A", "sem1", "teach1", 3, now)
	mock.ExpectQuery("SELECT (.+) FROM sections WHERE id").
		WithArgs("sec1").
		WillReturnRows(rows)

	section, err := repo.GetSection(context.Background(), "sec1")
	require.NoError(t, err)
	assert.Equal(t, "MATH101", section.CourseCode)
	assert.Equal(t, 3, section.Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryGetSectionMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM sections WHERE id").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSection(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryListRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "joined_at", "student_name"}).
		AddRow("en1", "stu1", "sec1", now, "Student One").
		AddRow("en2", "stu2", "sec1", now, "Student Two")
	mock.ExpectQuery("SELECT (.+) FROM enrollments e").
		WithArgs("sec1").
		WillReturnRows(rows)

	roster, err := repo.ListRoster(context.Background(), "sec1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Student One", roster[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryListStudentSections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"enrollment_id", "id", "course_code", "course_title", "section_code", "semester_id", "teacher_id", "credits", "created_at", "semester_name", "academic_year", "semester_start"}).
		AddRow("en1", "secA", "MATH101", "Calculus I", "A", "sem1", "teach1", 3, now, "Fall", "2025/2026", "2025-09-01").
		AddRow("en2", "secB", "PHYS101", "Mechanics", "B", "sem2", "teach2", 3, now, "Spring", "2025/2026", "2026-02-01")
	mock.ExpectQuery("SELECT (.+) FROM enrollments e").
		WithArgs("stu1").
		WillReturnRows(rows)

	sections, err := repo.ListStudentSections(context.Background(), "stu1")
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "en1", sections[0].EnrollmentID)
	assert.Equal(t, "sem1", sections[0].SemesterID)
	assert.Equal(t, "Fall", sections[0].SemesterName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryStudentExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("stu1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.StudentExists(context.Background(), "stu1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
