package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradeflow-api/internal/models"
	"github.com/noah-isme/gradeflow-api/internal/repository"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

type scoreStore interface {
	BulkUpsert(ctx context.Context, scores []models.AssessmentScore) (int, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.AssessmentScore, error)
	FetchByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string][]models.AssessmentScore, error)
	CountBySection(ctx context.Context, sectionID string) (int, error)
}

type workflowStore interface {
	GetState(ctx context.Context, sectionID string) (*models.SectionGradeState, error)
	CreateState(ctx context.Context, sectionID string) (*models.SectionGradeState, error)
	Transition(ctx context.Context, transition models.StateTransition) (*models.SectionGradeState, error)
	BumpVersion(ctx context.Context, sectionID string) error
	ListHistory(ctx context.Context, sectionID string) ([]models.StateTransition, error)
	FetchStates(ctx context.Context, sectionIDs []string) (map[string]models.SectionGradeState, error)
}

type rosterReader interface {
	GetSection(ctx context.Context, sectionID string) (*models.Section, error)
	GetEnrollment(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	ListRoster(ctx context.Context, sectionID string) ([]models.EnrollmentDetail, error)
	ListStudentSections(ctx context.Context, studentID string) ([]repository.StudentSectionRow, error)
	StudentExists(ctx context.Context, studentID string) (bool, error)
}

// BulkGradeEntry is one row of a teacher's bulk grade submission.
type BulkGradeEntry struct {
	EnrollmentID   string                `json:"enrollment_id" validate:"required"`
	AssessmentType models.AssessmentType `json:"assessment_type" validate:"required"`
	AssessmentName string                `json:"assessment_name" validate:"required"`
	Score          float64               `json:"score"`
	MaxScore       float64               `json:"max_score" validate:"required"`
	Weight         *float64              `json:"weight,omitempty"`
}

// BulkGradesRequest carries a full bulk submission for one section.
type BulkGradesRequest struct {
	Entries []BulkGradeEntry `json:"entries" validate:"required,min=1,dive"`
}

// BulkGradesResult reports how many ledger rows the batch wrote.
type BulkGradesResult struct {
	Written int `json:"written"`
}

// SectionGradeSummary is the aggregated read model for one section.
type SectionGradeSummary struct {
	SectionID    string                   `json:"section_id"`
	Status       models.SectionStatus     `json:"status"`
	StateVersion int64                    `json:"state_version"`
	Summaries    []models.GradeSummary    `json:"summaries"`
	Distribution models.GradeDistribution `json:"distribution"`
}

// GradeService owns the grade ledger: guarded bulk entry and the
// derived per-section summaries.
type GradeService struct {
	scores       scoreStore
	workflow     workflowStore
	roster       rosterReader
	cache        *CacheService
	locks        *SectionLocker
	scale        []models.GradeBand
	passingFloor float64
	summaryTTL   time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewGradeService constructs GradeService. A nil scale falls back to
// the institutional default table; a non-positive passing floor falls
// back to 60.
func NewGradeService(scores scoreStore, workflow workflowStore, roster rosterReader, cache *CacheService, locks *SectionLocker, scale []models.GradeBand, passingFloor float64, summaryTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(scale) == 0 {
		scale = models.DefaultGradingScale()
	}
	if locks == nil {
		locks = NewSectionLocker()
	}
	if passingFloor <= 0 {
		passingFloor = 60
	}
	return &GradeService{
		scores:       scores,
		workflow:     workflow,
		roster:       roster,
		cache:        cache,
		locks:        locks,
		scale:        scale,
		passingFloor: passingFloor,
		summaryTTL:   summaryTTL,
		validator:    validate,
		logger:       logger,
	}
}

// SubmitBulkGrades validates the entire batch, then writes it in one
// transaction. Any invalid row fails the whole call; nothing is
// written. The section state is created implicitly at DRAFT on the
// first submission and guards all later ones.
func (s *GradeService) SubmitBulkGrades(ctx context.Context, sectionID string, actor *models.JWTClaims, req BulkGradesRequest) (*BulkGradesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk grades payload")
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

	unlock := s.locks.Lock(sectionID)
	defer unlock()

	state, err := s.workflow.GetState(ctx, sectionID)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section state")
		}
		state, err = s.workflow.CreateState(ctx, sectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise section state")
		}
	}
	if !state.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("grades are not editable while section is %s", state.Status))
	}

	roster, err := s.roster.ListRoster(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if err := validateGradeBatch(rosterSet(roster), req.Entries); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scores := make([]models.AssessmentScore, 0, len(req.Entries))
	for _, entry := range req.Entries {
		scores = append(scores, models.AssessmentScore{
			EnrollmentID:   entry.EnrollmentID,
			SectionID:      sectionID,
			AssessmentType: entry.AssessmentType,
			AssessmentName: entry.AssessmentName,
			Score:          entry.Score,
			MaxScore:       entry.MaxScore,
			Weight:         entry.Weight,
			GradedBy:       actor.UserID,
			GradedAt:       now,
		})
	}
	written, err := s.scores.BulkUpsert(ctx, scores)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write grade ledger")
	}
	if err := s.workflow.BumpVersion(ctx, sectionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance section version")
	}
	if err := s.cache.Invalidate(ctx, repository.SummaryCachePattern(sectionID)); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.String("section_id", sectionID), zap.Error(err))
	}
	s.logger.Info("bulk grades written",
		zap.String("section_id", sectionID),
		zap.String("graded_by", actor.UserID),
		zap.Int("rows", written))
	return &BulkGradesResult{Written: written}, nil
}

// ListLedger returns the raw ledger rows for teacher entry screens.
func (s *GradeService) ListLedger(ctx context.Context, sectionID string) ([]models.AssessmentScore, error) {
	if _, err := s.roster.GetSection(ctx, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	scores, err := s.scores.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade ledger")
	}
	return scores, nil
}

// GetSummary recomputes the per-enrollment summaries for a section.
// An ungraded enrollment yields a "no grade" row, never zeros. The
// result is cached keyed by the section's state version.
func (s *GradeService) GetSummary(ctx context.Context, sectionID string) (*SectionGradeSummary, error) {
	section, err := s.roster.GetSection(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	status := models.SectionStatusDraft
	var version int64
	if state, err := s.workflow.GetState(ctx, sectionID); err == nil {
		status = state.Status
		version = state.Version
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section state")
	}

	cacheKey := repository.SummaryCacheKey(sectionID, version)
	var cached SectionGradeSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	roster, err := s.roster.ListRoster(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	enrollmentIDs := make([]string, 0, len(roster))
	for _, enrollment := range roster {
		enrollmentIDs = append(enrollmentIDs, enrollment.ID)
	}
	scoresByEnrollment, err := s.scores.FetchByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade ledger")
	}

	summaries := make([]models.GradeSummary, 0, len(roster))
	var percentages []float64
	for _, enrollment := range roster {
		summary := models.GradeSummary{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			StudentName:  enrollment.StudentName,
			CourseCode:   section.CourseCode,
			SectionCode:  section.SectionCode,
			Status:       status,
		}
		if pct := aggregatePercentage(scoresByEnrollment[enrollment.ID]); pct != nil {
			letter, points := applyScale(s.scale, *pct)
			passed := *pct >= s.passingFloor
			summary.Percentage = pct
			summary.Letter = &letter
			summary.GPAPoints = &points
			summary.Passed = &passed
			percentages = append(percentages, *pct)
		}
		summaries = append(summaries, summary)
	}

	result := &SectionGradeSummary{
		SectionID:    sectionID,
		Status:       status,
		StateVersion: version,
		Summaries:    summaries,
		Distribution: distribution(percentages),
	}
	if err := s.cache.Set(ctx, cacheKey, result, s.summaryTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.String("section_id", sectionID), zap.Error(err))
	}
	return result, nil
}

// aggregatePercentage rolls one enrollment's ledger rows into a
// percentage. Weighted when any positive weights are present, falling
// back to the unweighted mean of score/max ratios; nil when the
// enrollment has no rows at all.
func aggregatePercentage(scores []models.AssessmentScore) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var weightSum, weightedTotal float64
	for _, score := range scores {
		if score.Weight == nil {
			continue
		}
		weightSum += *score.Weight
		weightedTotal += score.Score / score.MaxScore * *score.Weight
	}
	var normalized float64
	if weightSum > 0 {
		normalized = weightedTotal / weightSum
	} else {
		var ratioSum float64
		for _, score := range scores {
			ratioSum += score.Score / score.MaxScore
		}
		normalized = ratioSum / float64(len(scores))
	}
	pct := normalized * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return &pct
}

// applyScale scans the breakpoint table descending; the first band
// whose floor is at or below the percentage wins.
func applyScale(scale []models.GradeBand, percentage float64) (string, float64) {
	for _, band := range scale {
		if percentage >= band.MinPercentage {
			return band.Letter, band.Points
		}
	}
	last := scale[len(scale)-1]
	return last.Letter, last.Points
}

func distribution(percentages []float64) models.GradeDistribution {
	if len(percentages) == 0 {
		return models.GradeDistribution{}
	}
	min, max, sum := percentages[0], percentages[0], 0.0
	for _, pct := range percentages {
		if pct < min {
			min = pct
		}
		if pct > max {
			max = pct
		}
		sum += pct
	}
	avg := sum / float64(len(percentages))
	return models.GradeDistribution{Min: &min, Max: &max, Average: &avg}
}

// requireSectionTeacher rejects teachers acting on sections that are
// not assigned to them. Admins pass through.
func requireSectionTeacher(section *models.Section, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleTeacher && section.TeacherID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "section is not assigned to this teacher")
	}
	return nil
}
