package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradeflow-api/internal/models"
	"github.com/noah-isme/gradeflow-api/internal/repository"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

// TranscriptService assembles a student's multi-semester transcript
// from published sections only.
type TranscriptService struct {
	roster        rosterReader
	scores        scoreStore
	workflow      workflowStore
	cache         *CacheService
	scale         []models.GradeBand
	transcriptTTL time.Duration
	logger        *zap.Logger
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(roster rosterReader, scores scoreStore, workflow workflowStore, cache *CacheService, scale []models.GradeBand, transcriptTTL time.Duration, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(scale) == 0 {
		scale = models.DefaultGradingScale()
	}
	return &TranscriptService{
		roster:        roster,
		scores:        scores,
		workflow:      workflow,
		cache:         cache,
		scale:         scale,
		transcriptTTL: transcriptTTL,
		logger:        logger,
	}
}

// GetTranscript builds the chronological transcript. Each semester row
// carries the cumulative GPA as of that semester; a student with no
// published sections gets an empty transcript with a null cumulative
// GPA, not an error.
func (s *TranscriptService) GetTranscript(ctx context.Context, studentID string) (*models.Transcript, error) {
	exists, err := s.roster.StudentExists(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	cacheKey := repository.TranscriptCacheKey(studentID)
	var cached models.Transcript
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	transcript, err := s.build(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, transcript, s.transcriptTTL); err != nil {
		s.logger.Warn("transcript cache write failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return transcript, nil
}

func (s *TranscriptService) build(ctx context.Context, studentID string) (*models.Transcript, error) {
	rows, err := s.roster.ListStudentSections(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student sections")
	}

	sectionIDs := make([]string, 0, len(rows))
	enrollmentIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		sectionIDs = append(sectionIDs, row.ID)
		enrollmentIDs = append(enrollmentIDs, row.EnrollmentID)
	}
	states, err := s.workflow.FetchStates(ctx, sectionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch section states")
	}
	scoresByEnrollment, err := s.scores.FetchByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grade ledger")
	}

	transcript := &models.Transcript{StudentID: studentID, Semesters: []models.TranscriptEntry{}}
	var entry *models.TranscriptEntry
	var cumulativeWeighted float64
	var cumulativeCredits int

	flush := func() {
		if entry == nil {
			return
		}
		if entry.Credits > 0 {
			var weighted float64
			for _, course := range entry.Courses {
				weighted += course.GPAPoints * float64(course.Credits)
			}
			entry.SemesterGPA = weighted / float64(entry.Credits)
			cumulativeWeighted += weighted
			cumulativeCredits += entry.Credits
		}
		if cumulativeCredits > 0 {
			entry.CumulativeGPA = cumulativeWeighted / float64(cumulativeCredits)
		}
		transcript.Semesters = append(transcript.Semesters, *entry)
		entry = nil
	}

	// rows arrive ordered by semester start date.
	for _, row := range rows {
		state, ok := states[row.ID]
		if !ok || state.Status != models.SectionStatusPublished {
			continue
		}
		pct := aggregatePercentage(scoresByEnrollment[row.EnrollmentID])
		if pct == nil {
			// Published sections always carry grades; an empty
			// enrollment contributes nothing to the transcript.
			continue
		}
		if entry == nil || entry.SemesterID != row.SemesterID {
			flush()
			entry = &models.TranscriptEntry{
				SemesterID:   row.SemesterID,
				SemesterName: row.SemesterName,
				AcademicYear: row.AcademicYear,
				Courses:      []models.TranscriptCourse{},
			}
		}
		letter, points := applyScale(s.scale, *pct)
		entry.Courses = append(entry.Courses, models.TranscriptCourse{
			CourseCode:  row.CourseCode,
			CourseTitle: row.CourseTitle,
			SectionCode: row.SectionCode,
			Credits:     row.Credits,
			Percentage:  *pct,
			Letter:      letter,
			GPAPoints:   points,
		})
		entry.Credits += row.Credits
	}
	flush()

	transcript.TotalCredits = cumulativeCredits
	if cumulativeCredits > 0 {
		gpa := cumulativeWeighted / float64(cumulativeCredits)
		transcript.CumulativeGPA = &gpa
	}
	return transcript, nil
}

// RefreshSection is the post-publish hook: it drops and rewarms the
// transcript cache for every student on the section roster, keeping
// cumulative GPAs consistent with the latest published state.
func (s *TranscriptService) RefreshSection(ctx context.Context, sectionID string) error {
	roster, err := s.roster.ListRoster(ctx, sectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	for _, enrollment := range roster {
		if err := s.cache.Invalidate(ctx, repository.TranscriptCacheKey(enrollment.StudentID)); err != nil {
			s.logger.Warn("transcript cache invalidation failed", zap.String("student_id", enrollment.StudentID), zap.Error(err))
			continue
		}
		if !s.cache.Enabled() {
			continue
		}
		transcript, err := s.build(ctx, enrollment.StudentID)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, repository.TranscriptCacheKey(enrollment.StudentID), transcript, s.transcriptTTL); err != nil {
			s.logger.Warn("transcript cache warm failed", zap.String("student_id", enrollment.StudentID), zap.Error(err))
		}
	}
	s.logger.Info("transcripts refreshed after publish", zap.String("section_id", sectionID), zap.Int("students", len(roster)))
	return nil
}
