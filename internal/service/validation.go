package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/gradeflow-api/internal/models"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

// ValidateScore checks score bounds for a single entry. Both values
// must be finite, maxScore strictly positive, and score within
// [0, maxScore]. Boundary values 0 and maxScore are accepted.
func ValidateScore(score, maxScore float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || math.IsNaN(maxScore) || math.IsInf(maxScore, 0) {
		return appErrors.Clone(appErrors.ErrValidation, "score and max_score must be numeric")
	}
	if maxScore <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "max_score must be greater than zero")
	}
	if score < 0 || score > maxScore {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score %g outside [0, %g]", score, maxScore))
	}
	return nil
}

// validateGradeBatch checks a full bulk submission against the section
// roster before anything is written. Failures are collected across all
// offending rows: unknown enrollments come back as one NotEnrolled
// error, everything else as one ValidationError, each with per-row
// details.
func validateGradeBatch(roster map[string]struct{}, entries []BulkGradeEntry) error {
	var notEnrolled []string
	var invalid []string
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if _, ok := roster[entry.EnrollmentID]; !ok {
			notEnrolled = append(notEnrolled, fmt.Sprintf("row %d: enrollment %s not on section roster", i, entry.EnrollmentID))
		}
		name := strings.TrimSpace(entry.AssessmentName)
		if name == "" {
			invalid = append(invalid, fmt.Sprintf("row %d: assessment_name is required", i))
		}
		key := entry.EnrollmentID + "\x00" + name
		if first, dup := seen[key]; dup {
			invalid = append(invalid, fmt.Sprintf("row %d: duplicate of row %d for (%s, %s)", i, first, entry.EnrollmentID, name))
		} else {
			seen[key] = i
		}
		if !entry.AssessmentType.Valid() {
			invalid = append(invalid, fmt.Sprintf("row %d: unknown assessment_type %q", i, entry.AssessmentType))
		}
		if err := ValidateScore(entry.Score, entry.MaxScore); err != nil {
			invalid = append(invalid, fmt.Sprintf("row %d: %s", i, appErrors.FromError(err).Message))
		}
		if entry.Weight != nil && (*entry.Weight < 0 || math.IsNaN(*entry.Weight) || math.IsInf(*entry.Weight, 0)) {
			invalid = append(invalid, fmt.Sprintf("row %d: weight must be a non-negative number", i))
		}
	}
	if len(notEnrolled) > 0 {
		return appErrors.WithDetails(appErrors.ErrNotEnrolled, notEnrolled)
	}
	if len(invalid) > 0 {
		return appErrors.WithDetails(appErrors.ErrValidation, invalid)
	}
	return nil
}

// validateAttendanceBatch mirrors validateGradeBatch for one day of
// attendance records: roster membership, one record per enrollment,
// known status values.
func validateAttendanceBatch(roster map[string]struct{}, records []BulkAttendanceEntry) error {
	var notEnrolled []string
	var invalid []string
	seen := make(map[string]int, len(records))
	for i, record := range records {
		if _, ok := roster[record.EnrollmentID]; !ok {
			notEnrolled = append(notEnrolled, fmt.Sprintf("row %d: enrollment %s not on section roster", i, record.EnrollmentID))
		}
		if first, dup := seen[record.EnrollmentID]; dup {
			invalid = append(invalid, fmt.Sprintf("row %d: duplicate of row %d for enrollment %s", i, first, record.EnrollmentID))
		} else {
			seen[record.EnrollmentID] = i
		}
		if !models.AttendanceStatus(record.Status).Valid() {
			invalid = append(invalid, fmt.Sprintf("row %d: unknown status %q", i, record.Status))
		}
	}
	if len(notEnrolled) > 0 {
		return appErrors.WithDetails(appErrors.ErrNotEnrolled, notEnrolled)
	}
	if len(invalid) > 0 {
		return appErrors.WithDetails(appErrors.ErrValidation, invalid)
	}
	return nil
}

func rosterSet(roster []models.EnrollmentDetail) map[string]struct{} {
	set := make(map[string]struct{}, len(roster))
	for _, enrollment := range roster {
		set[enrollment.ID] = struct{}{}
	}
	return set
}
