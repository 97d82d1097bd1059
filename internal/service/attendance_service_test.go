package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeflow-api/internal/models"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
)

type mockAttendanceStore struct {
	counts  map[string]map[models.AttendanceStatus]int
	upserts [][]models.AttendanceRecord
}

func (m *mockAttendanceStore) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) (int, error) {
	m.upserts = append(m.upserts, records)
	return len(records), nil
}

func (m *mockAttendanceStore) StatusCounts(ctx context.Context, enrollmentID string) (map[models.AttendanceStatus]int, error) {
	if counts, ok := m.counts[enrollmentID]; ok {
		return counts, nil
	}
	return map[models.AttendanceStatus]int{}, nil
}

func (m *mockAttendanceStore) ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, batch := range m.upserts {
		for _, record := range batch {
			if record.SectionID == sectionID && record.Date.Equal(date) {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

func attendanceFixture() (*mockAttendanceStore, *mockRosterReader) {
	store := &mockAttendanceStore{counts: map[string]map[models.AttendanceStatus]int{}}
	roster := &mockRosterReader{
		sections: map[string]*models.Section{
			"sec1": {ID: "sec1", TeacherID: "teach1"},
		},
		enrollments: map[string]*models.Enrollment{
			"en1": {ID: "en1", StudentID: "stu1", SectionID: "sec1"},
		},
		rosters: map[string][]models.EnrollmentDetail{
			"sec1": {
				{Enrollment: models.Enrollment{ID: "en1", StudentID: "stu1", SectionID: "sec1"}},
				{Enrollment: models.Enrollment{ID: "en2", StudentID: "stu2", SectionID: "sec1"}},
			},
		},
	}
	return store, roster
}

func TestAttendanceSubmitBulkWrites(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	result, err := svc.SubmitBulk(context.Background(), "sec1", teacherClaims(), BulkAttendanceRequest{
		Date: "2026-03-02",
		Records: []BulkAttendanceEntry{
			{EnrollmentID: "en1", Status: "PRESENT"},
			{EnrollmentID: "en2", Status: "ABSENT"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "teach1", store.upserts[0][0].MarkedBy)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), store.upserts[0][0].Date)
}

func TestAttendanceSubmitBulkUnknownEnrollment(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	_, err := svc.SubmitBulk(context.Background(), "sec1", teacherClaims(), BulkAttendanceRequest{
		Date:    "2026-03-02",
		Records: []BulkAttendanceEntry{{EnrollmentID: "ghost", Status: "PRESENT"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEnrolled))
	assert.Empty(t, store.upserts)
}

func TestAttendanceSubmitBulkUnknownStatus(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	_, err := svc.SubmitBulk(context.Background(), "sec1", teacherClaims(), BulkAttendanceRequest{
		Date:    "2026-03-02",
		Records: []BulkAttendanceEntry{{EnrollmentID: "en1", Status: "SLEEPING"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceSubmitBulkBadDate(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	_, err := svc.SubmitBulk(context.Background(), "sec1", teacherClaims(), BulkAttendanceRequest{
		Date:    "02-03-2026",
		Records: []BulkAttendanceEntry{{EnrollmentID: "en1", Status: "PRESENT"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceSummarySatisfactoryBoundary(t *testing.T) {
	store, roster := attendanceFixture()
	store.counts["en1"] = map[models.AttendanceStatus]int{
		models.AttendanceStatusPresent: 9,
		models.AttendanceStatusAbsent:  2,
		models.AttendanceStatusLate:    1,
	}
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	summary, err := svc.GetSummary(context.Background(), "en1")
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Total)
	assert.InDelta(t, 75.0, summary.Rate, 0.0001)
	assert.Equal(t, models.AttendanceLabelSatisfactory, summary.Label)
}

func TestAttendanceSummaryAtRisk(t *testing.T) {
	store, roster := attendanceFixture()
	store.counts["en1"] = map[models.AttendanceStatus]int{
		models.AttendanceStatusPresent: 8,
		models.AttendanceStatusAbsent:  4,
	}
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	summary, err := svc.GetSummary(context.Background(), "en1")
	require.NoError(t, err)
	assert.InDelta(t, 66.6667, summary.Rate, 0.001)
	assert.Equal(t, models.AttendanceLabelAtRisk, summary.Label)
}

func TestAttendanceSummaryNoRecords(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	summary, err := svc.GetSummary(context.Background(), "en1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.Rate)
	assert.Empty(t, summary.Label)
}

func TestAttendanceSummaryUnknownEnrollment(t *testing.T) {
	store, roster := attendanceFixture()
	svc := NewAttendanceService(store, roster, 75, nil, nil)

	_, err := svc.GetSummary(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
