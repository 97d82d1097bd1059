package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeflow-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scoreColumns() []string {
	return []string{"id", "enrollment_id", "section_id", "assessment_type", "assessment_name", "score", "max_score", "weight", "graded_by", "graded_at", "created_at", "updated_at"}
}

func TestScoreRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assessment_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assessment_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	written, err := repo.BulkUpsert(context.Background(), []models.AssessmentScore{
		{EnrollmentID: "en1", SectionID: "sec1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 8, MaxScore: 10, GradedBy: "teach1"},
		{EnrollmentID: "en2", SectionID: "sec1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 9, MaxScore: 10, GradedBy: "teach1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assessment_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assessment_scores").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.BulkUpsert(context.Background(), []models.AssessmentScore{
		{EnrollmentID: "en1", SectionID: "sec1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 8, MaxScore: 10},
		{EnrollmentID: "en2", SectionID: "sec1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 9, MaxScore: 10},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertEmptyBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	written, err := repo.BulkUpsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryListBySection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("s1", "en1", "sec1", "QUIZ", "Quiz 1", 8.0, 10.0, nil, "teach1", now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM assessment_scores WHERE section_id").
		WithArgs("sec1").
		WillReturnRows(rows)

	scores, err := repo.ListBySection(context.Background(), "sec1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "en1", scores[0].EnrollmentID)
	assert.Nil(t, scores[0].Weight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryFetchByEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scoreColumns()).
		AddRow("s1", "en1", "sec1", "QUIZ", "Quiz 1", 8.0, 10.0, 0.3, "teach1", now, now, now).
		AddRow("s2", "en1", "sec1", "FINAL", "Final", 70.0, 100.0, 0.7, "teach1", now, now, now).
		AddRow("s3", "en2", "sec1", "QUIZ", "Quiz 1", 9.0, 10.0, nil, "teach1", now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM assessment_scores WHERE enrollment_id IN").
		WithArgs("en1", "en2").
		WillReturnRows(rows)

	result, err := repo.FetchByEnrollments(context.Background(), []string{"en1", "en2"})
	require.NoError(t, err)
	assert.Len(t, result["en1"], 2)
	assert.Len(t, result["en2"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryFetchByEnrollmentsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	result, err := repo.FetchByEnrollments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
