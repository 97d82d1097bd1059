package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradeflow-api/internal/models"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

type attendanceStore interface {
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) (int, error)
	StatusCounts(ctx context.Context, enrollmentID string) (map[models.AttendanceStatus]int, error)
	ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.AttendanceRecord, error)
}

// BulkAttendanceEntry is one row of a day's attendance submission.
type BulkAttendanceEntry struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
}

// BulkAttendanceRequest carries one day of attendance for a section.
type BulkAttendanceRequest struct {
	Date    string                `json:"date" validate:"required,datetime=2006-01-02"`
	Records []BulkAttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

// BulkAttendanceResult reports how many records the batch wrote.
type BulkAttendanceResult struct {
	Written int `json:"written"`
}

// AttendanceService records attendance and derives per-enrollment
// rates. The satisfactory threshold is a display cue only; nothing in
// the workflow is gated on it.
type AttendanceService struct {
	attendance attendanceStore
	roster     rosterReader
	threshold  float64
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(attendance attendanceStore, roster rosterReader, threshold float64, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = 75
	}
	return &AttendanceService{
		attendance: attendance,
		roster:     roster,
		threshold:  threshold,
		validator:  validate,
		logger:     logger,
	}
}

// SubmitBulk validates a full day's records against the roster, then
// writes them atomically. Re-marking a date overwrites prior statuses.
func (s *AttendanceService) SubmitBulk(ctx context.Context, sectionID string, actor *models.JWTClaims, req BulkAttendanceRequest) (*BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	section, err := s.roster.GetSection(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if err := requireSectionTeacher(section, actor); err != nil {
		return nil, err
	}
	roster, err := s.roster.ListRoster(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if err := validateAttendanceBatch(rosterSet(roster), req.Records); err != nil {
		return nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, entry := range req.Records {
		records = append(records, models.AttendanceRecord{
			EnrollmentID: entry.EnrollmentID,
			SectionID:    sectionID,
			Date:         date,
			Status:       models.AttendanceStatus(entry.Status),
			MarkedBy:     actor.UserID,
		})
	}
	written, err := s.attendance.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance")
	}
	s.logger.Info("attendance recorded",
		zap.String("section_id", sectionID),
		zap.String("date", req.Date),
		zap.Int("rows", written))
	return &BulkAttendanceResult{Written: written}, nil
}

// GetSummary derives the attendance rate for one enrollment. Only
// marked days count toward the total; an enrollment with nothing
// marked yet comes back with zero counts and an empty label.
func (s *AttendanceService) GetSummary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	if _, err := s.roster.GetEnrollment(ctx, enrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	counts, err := s.attendance.StatusCounts(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	summary := &models.AttendanceSummary{
		EnrollmentID: enrollmentID,
		Present:      counts[models.AttendanceStatusPresent],
		Absent:       counts[models.AttendanceStatusAbsent],
		Late:         counts[models.AttendanceStatusLate],
		Excused:      counts[models.AttendanceStatusExcused],
	}
	summary.Total = summary.Present + summary.Absent + summary.Late + summary.Excused
	if summary.Total == 0 {
		return summary, nil
	}
	summary.Rate = float64(summary.Present) / float64(summary.Total) * 100
	if summary.Rate >= s.threshold {
		summary.Label = models.AttendanceLabelSatisfactory
	} else {
		summary.Label = models.AttendanceLabelAtRisk
	}
	return summary, nil
}
