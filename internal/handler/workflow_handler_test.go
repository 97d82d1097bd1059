package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeflow-api/internal/middleware"
	"github.com/noah-isme/gradeflow-api/internal/models"
	"github.com/noah-isme/gradeflow-api/internal/repository"
	"github.com/noah-isme/gradeflow-api/internal/service"
)

type stubWorkflowStore struct {
	states  map[string]*models.SectionGradeState
	history []models.StateTransition
}

func (s *stubWorkflowStore) GetState(ctx context.Context, sectionID string) (*models.SectionGradeState, error) {
	if state, ok := s.states[sectionID]; ok {
		cp := *state
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubWorkflowStore) CreateState(ctx context.Context, sectionID string) (*models.SectionGradeState, error) {
	state := &models.SectionGradeState{SectionID: sectionID, Status: models.SectionStatusDraft, Version: 1}
	s.states[sectionID] = state
	cp := *state
	return &cp, nil
}

func (s *stubWorkflowStore) Transition(ctx context.Context, transition models.StateTransition) (*models.SectionGradeState, error) {
	state, ok := s.states[transition.SectionID]
	if !ok || state.Status != transition.FromStatus {
		return nil, repository.ErrStateConflict
	}
	state.Status = transition.ToStatus
	state.Version++
	transition.OccurredAt = time.Now()
	s.history = append(s.history, transition)
	cp := *state
	return &cp, nil
}

func (s *stubWorkflowStore) BumpVersion(ctx context.Context, sectionID string) error {
	return nil
}

func (s *stubWorkflowStore) ListHistory(ctx context.Context, sectionID string) ([]models.StateTransition, error) {
	return s.history, nil
}

func (s *stubWorkflowStore) FetchStates(ctx context.Context, sectionIDs []string) (map[string]models.SectionGradeState, error) {
	return map[string]models.SectionGradeState{}, nil
}

type stubRosterReader struct {
	sections map[string]*models.Section
}

func (s *stubRosterReader) GetSection(ctx context.Context, sectionID string) (*models.Section, error) {
	if section, ok := s.sections[sectionID]; ok {
		return section, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubRosterReader) GetEnrollment(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	return nil, sql.ErrNoRows
}

func (s *stubRosterReader) ListRoster(ctx context.Context, sectionID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (s *stubRosterReader) ListStudentSections(ctx context.Context, studentID string) ([]repository.StudentSectionRow, error) {
	return nil, nil
}

func (s *stubRosterReader) StudentExists(ctx context.Context, studentID string) (bool, error) {
	return false, nil
}

func buildWorkflowRouter(store *stubWorkflowStore, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	roster := &stubRosterReader{sections: map[string]*models.Section{
		"sec1": {ID: "sec1", TeacherID: "teach1"},
	}}
	svc := service.NewWorkflowService(store, roster, nil, nil, nil, nil)
	h := NewWorkflowHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	})
	router.POST("/sections/:id/workflow", h.Transition)
	router.GET("/sections/:id/workflow", h.Get)
	return router
}

func TestWorkflowHandlerTransition(t *testing.T) {
	store := &stubWorkflowStore{states: map[string]*models.SectionGradeState{
		"sec1": {SectionID: "sec1", Status: models.SectionStatusDraft, Version: 1},
	}}
	router := buildWorkflowRouter(store, &models.JWTClaims{UserID: "teach1", Role: models.RoleTeacher})

	req, _ := http.NewRequest(http.MethodPost, "/sections/sec1/workflow", bytes.NewBufferString(`{"action":"submit"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"SUBMITTED"`)
}

func TestWorkflowHandlerIllegalTransition(t *testing.T) {
	store := &stubWorkflowStore{states: map[string]*models.SectionGradeState{
		"sec1": {SectionID: "sec1", Status: models.SectionStatusDraft, Version: 1},
	}}
	router := buildWorkflowRouter(store, &models.JWTClaims{UserID: "admin1", Role: models.RoleAdmin})

	req, _ := http.NewRequest(http.MethodPost, "/sections/sec1/workflow", bytes.NewBufferString(`{"action":"publish"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), `"INVALID_TRANSITION"`)
}

func TestWorkflowHandlerGetHistory(t *testing.T) {
	store := &stubWorkflowStore{states: map[string]*models.SectionGradeState{
		"sec1": {SectionID: "sec1", Status: models.SectionStatusSubmitted, Version: 2},
	}}
	router := buildWorkflowRouter(store, &models.JWTClaims{UserID: "admin1", Role: models.RoleAdmin})

	req, _ := http.NewRequest(http.MethodGet, "/sections/sec1/workflow", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"history"`)
}

func TestWorkflowHandlerUnknownSection(t *testing.T) {
	store := &stubWorkflowStore{states: map[string]*models.SectionGradeState{}}
	router := buildWorkflowRouter(store, &models.JWTClaims{UserID: "admin1", Role: models.RoleAdmin})

	req, _ := http.NewRequest(http.MethodGet, "/sections/ghost/workflow", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}
