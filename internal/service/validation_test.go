package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeflow-api/internal/models"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

func TestValidateScoreBounds(t *testing.T) {
	assert.NoError(t, ValidateScore(0, 10))
	assert.NoError(t, ValidateScore(10, 10))
	assert.NoError(t, ValidateScore(7.5, 10))

	assert.Error(t, ValidateScore(-0.5, 10))
	assert.Error(t, ValidateScore(10.5, 10))
	assert.Error(t, ValidateScore(5, 0))
	assert.Error(t, ValidateScore(5, -1))
	assert.Error(t, ValidateScore(math.NaN(), 10))
	assert.Error(t, ValidateScore(5, math.Inf(1)))
}

func TestValidateGradeBatchCollectsAllFailures(t *testing.T) {
	roster := map[string]struct{}{"en1": {}}

	err := validateGradeBatch(roster, []BulkGradeEntry{
		{EnrollmentID: "en1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 11, MaxScore: 10},
		{EnrollmentID: "en1", AssessmentType: "ORAL", AssessmentName: "Quiz 2", Score: 5, MaxScore: 10},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Len(t, appErr.Details, 2)
}

func TestValidateGradeBatchNotEnrolledWins(t *testing.T) {
	roster := map[string]struct{}{"en1": {}}

	err := validateGradeBatch(roster, []BulkGradeEntry{
		{EnrollmentID: "ghost", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 11, MaxScore: 10},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEnrolled))
}

func TestValidateGradeBatchDuplicateRows(t *testing.T) {
	roster := map[string]struct{}{"en1": {}}

	err := validateGradeBatch(roster, []BulkGradeEntry{
		{EnrollmentID: "en1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 5, MaxScore: 10},
		{EnrollmentID: "en1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 7, MaxScore: 10},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestValidateGradeBatchNegativeWeight(t *testing.T) {
	roster := map[string]struct{}{"en1": {}}
	weight := -0.2

	err := validateGradeBatch(roster, []BulkGradeEntry{
		{EnrollmentID: "en1", AssessmentType: models.AssessmentTypeQuiz, AssessmentName: "Quiz 1", Score: 5, MaxScore: 10, Weight: &weight},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestValidateAttendanceBatchDuplicateEnrollment(t *testing.T) {
	roster := map[string]struct{}{"en1": {}}

	err := validateAttendanceBatch(roster, []BulkAttendanceEntry{
		{EnrollmentID: "en1", Status: "PRESENT"},
		{EnrollmentID: "en1", Status: "ABSENT"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
