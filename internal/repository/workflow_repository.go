package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeflow-api/internal/models"
)

// ErrStateConflict signals that the section state changed between the
// caller's read and the guarded update.
var ErrStateConflict = errors.New("section state changed concurrently")

// WorkflowRepository persists section grade states and their
// append-only transition history.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// GetState fetches the workflow state for a section. Returns
// sql.ErrNoRows when the section has never received grades.
func (r *WorkflowRepository) GetState(ctx context.Context, sectionID string) (*models.SectionGradeState, error) {
	const query = `SELECT section_id, status, version, created_at, updated_at
        FROM section_grade_states WHERE section_id = $1`
	var state models.SectionGradeState
	if err := r.db.GetContext(ctx, &state, query, sectionID); err != nil {
		return nil, err
	}
	return &state, nil
}

// CreateState inserts the implicit DRAFT state for a section's first
// grade entry. ON CONFLICT keeps the call idempotent under races.
func (r *WorkflowRepository) CreateState(ctx context.Context, sectionID string) (*models.SectionGradeState, error) {
	now := time.Now().UTC()
	state := models.SectionGradeState{
		SectionID: sectionID,
		Status:    models.SectionStatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	const query = `INSERT INTO section_grade_states (section_id, status, version, created_at, updated_at)
        VALUES (:section_id, :status, :version, :created_at, :updated_at)
        ON CONFLICT (section_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, state); err != nil {
		return nil, fmt.Errorf("create section state: %w", err)
	}
	return r.GetState(ctx, sectionID)
}

// Transition updates the current status and appends the audit row in
// one transaction, bumping the state version.
func (r *WorkflowRepository) Transition(ctx context.Context, transition models.StateTransition) (*models.SectionGradeState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	if transition.ID == "" {
		transition.ID = uuid.NewString()
	}
	if transition.OccurredAt.IsZero() {
		transition.OccurredAt = time.Now().UTC()
	}
	const updateQuery = `UPDATE section_grade_states
        SET status = $1, version = version + 1, updated_at = $2
        WHERE section_id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, updateQuery, transition.ToStatus, transition.OccurredAt, transition.SectionID, transition.FromStatus)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("update section state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("transition rows affected: %w", err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return nil, ErrStateConflict
	}
	const historyQuery = `INSERT INTO section_state_transitions (id, section_id, from_status, to_status, actor_id, actor_role, reason, occurred_at)
        VALUES (:id, :section_id, :from_status, :to_status, :actor_id, :actor_role, :reason, :occurred_at)`
	if _, err := tx.NamedExecContext(ctx, historyQuery, transition); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("append transition history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return r.GetState(ctx, transition.SectionID)
}

// BumpVersion increments the state version after a ledger write so
// cached aggregates keyed on the version fall out of date.
func (r *WorkflowRepository) BumpVersion(ctx context.Context, sectionID string) error {
	const query = `UPDATE section_grade_states SET version = version + 1, updated_at = $1 WHERE section_id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), sectionID); err != nil {
		return fmt.Errorf("bump section version: %w", err)
	}
	return nil
}

// ListHistory returns the full transition history, oldest first.
func (r *WorkflowRepository) ListHistory(ctx context.Context, sectionID string) ([]models.StateTransition, error) {
	const query = `SELECT id, section_id, from_status, to_status, actor_id, actor_role, reason, occurred_at
        FROM section_state_transitions WHERE section_id = $1 ORDER BY occurred_at, id`
	var history []models.StateTransition
	if err := r.db.SelectContext(ctx, &history, query, sectionID); err != nil {
		return nil, fmt.Errorf("list transition history: %w", err)
	}
	return history, nil
}

// FetchStates returns workflow states for the provided sections,
// keyed by section id.
func (r *WorkflowRepository) FetchStates(ctx context.Context, sectionIDs []string) (map[string]models.SectionGradeState, error) {
	if len(sectionIDs) == 0 {
		return map[string]models.SectionGradeState{}, nil
	}
	query, args, err := sqlx.In(`SELECT section_id, status, version, created_at, updated_at
        FROM section_grade_states WHERE section_id IN (?)`, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("build states query: %w", err)
	}
	query = r.db.Rebind(query)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch states: %w", err)
	}
	defer rows.Close()
	result := make(map[string]models.SectionGradeState, len(sectionIDs))
	for rows.Next() {
		var state models.SectionGradeState
		if err := rows.StructScan(&state); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		result[state.SectionID] = state
	}
	return result, nil
}
