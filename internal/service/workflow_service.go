package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradeflow-api/internal/models"
	"github.com/noah-isme/gradeflow-api/internal/repository"
	appErrors "github.com/noah-isme/gradeflow-api/pkg/errors"
	"github.com/noah-isme/gradeflow-api/pkg/jobs"
)

// PublishJobType tags transcript refresh jobs queued by a publish
// transition.
const PublishJobType = "transcript_refresh"

type publishQueue interface {
	Enqueue(job jobs.Job) error
}

// TransitionRequest is the payload of a workflow transition call.
type TransitionRequest struct {
	Action models.WorkflowAction `json:"action" validate:"required"`
	Reason string                `json:"reason,omitempty"`
}

// WorkflowService walks sections through the grade approval state
// machine and keeps the append-only audit history.
type WorkflowService struct {
	workflow workflowStore
	roster   rosterReader
	cache    *CacheService
	locks    *SectionLocker
	queue    publishQueue
	logger   *zap.Logger
}

// NewWorkflowService constructs WorkflowService. The queue may be nil
// when the publish hook is disabled.
func NewWorkflowService(workflow workflowStore, roster rosterReader, cache *CacheService, locks *SectionLocker, queue publishQueue, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewSectionLocker()
	}
	return &WorkflowService{
		workflow: workflow,
		roster:   roster,
		cache:    cache,
		locks:    locks,
		queue:    queue,
		logger:   logger,
	}
}

// Transition applies one workflow action for the acting user. Illegal
// edges fail fast with a single cause; a publish transition enqueues
// the transcript refresh hook after commit.
func (s *WorkflowService) Transition(ctx context.Context, sectionID string, actor *models.JWTClaims, req TransitionRequest) (*models.SectionGradeState, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !req.Action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown workflow action %q", req.Action))
	}
	section, err := s.roster.GetSection(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	unlock := s.locks.Lock(sectionID)
	defer unlock()

	state, err := s.workflow.GetState(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section has no grade sheet yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section state")
	}

	next, requiredRole, ok := models.NextStatus(state.Status, req.Action)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot %s a section in %s", req.Action, state.Status))
	}
	if actor.Role != requiredRole {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("action %s requires role %s", req.Action, requiredRole))
	}
	if requiredRole == models.RoleTeacher {
		if err := requireSectionTeacher(section, actor); err != nil {
			return nil, err
		}
	}

	var reason *string
	if req.Action == models.ActionReject {
		trimmed := strings.TrimSpace(req.Reason)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a rejection requires a non-empty reason")
		}
		reason = &trimmed
	}

	updated, err := s.workflow.Transition(ctx, models.StateTransition{
		SectionID:  sectionID,
		FromStatus: state.Status,
		ToStatus:   next,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Reason:     reason,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "section state changed concurrently, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
	}

	if err := s.cache.Invalidate(ctx, repository.SummaryCachePattern(sectionID)); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.String("section_id", sectionID), zap.Error(err))
	}
	s.logger.Info("workflow transition applied",
		zap.String("section_id", sectionID),
		zap.String("from", string(state.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor", actor.UserID))

	if updated.Status == models.SectionStatusPublished && s.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: PublishJobType, Payload: sectionID}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("failed to enqueue transcript refresh", zap.String("section_id", sectionID), zap.Error(err))
		}
	}
	return updated, nil
}

// GetWorkflow returns the current state with its full audit history.
func (s *WorkflowService) GetWorkflow(ctx context.Context, sectionID string) (*models.SectionWorkflow, error) {
	if _, err := s.roster.GetSection(ctx, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	state, err := s.workflow.GetState(ctx, sectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section has no grade sheet yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section state")
	}
	history, err := s.workflow.ListHistory(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transition history")
	}
	return &models.SectionWorkflow{State: *state, History: history}, nil
}
