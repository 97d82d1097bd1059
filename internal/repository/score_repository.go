package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeflow-api/internal/models"
)

// ScoreRepository persists the grade ledger. Rows are unique per
// (enrollment_id, assessment_name); the repository never deletes them.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// BulkUpsert writes the batch in a single transaction. The caller has
// already validated every row; a failure rolls the whole batch back so
// no partial state is ever committed.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.AssessmentScore) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin scores tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range scores {
		if scores[i].ID == "" {
			scores[i].ID = uuid.NewString()
		}
		if scores[i].CreatedAt.IsZero() {
			scores[i].CreatedAt = now
		}
		if scores[i].GradedAt.IsZero() {
			scores[i].GradedAt = now
		}
		scores[i].UpdatedAt = now
		const query = `INSERT INTO assessment_scores (id, enrollment_id, section_id, assessment_type, assessment_name, score, max_score, weight, graded_by, graded_at, created_at, updated_at)
            VALUES (:id, :enrollment_id, :section_id, :assessment_type, :assessment_name, :score, :max_score, :weight, :graded_by, :graded_at, :created_at, :updated_at)
            ON CONFLICT (enrollment_id, assessment_name)
            DO UPDATE SET assessment_type = EXCLUDED.assessment_type, score = EXCLUDED.score, max_score = EXCLUDED.max_score,
                weight = EXCLUDED.weight, graded_by = EXCLUDED.graded_by, graded_at = EXCLUDED.graded_at, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, scores[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit scores: %w", err)
	}
	return len(scores), nil
}

// ListBySection returns every ledger row for a section.
func (r *ScoreRepository) ListBySection(ctx context.Context, sectionID string) ([]models.AssessmentScore, error) {
	const query = `SELECT id, enrollment_id, section_id, assessment_type, assessment_name, score, max_score, weight, graded_by, graded_at, created_at, updated_at
        FROM assessment_scores WHERE section_id = $1 ORDER BY enrollment_id, assessment_name`
	var scores []models.AssessmentScore
	if err := r.db.SelectContext(ctx, &scores, query, sectionID); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// FetchByEnrollments returns ledger rows keyed by enrollment ID.
func (r *ScoreRepository) FetchByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string][]models.AssessmentScore, error) {
	if len(enrollmentIDs) == 0 {
		return map[string][]models.AssessmentScore{}, nil
	}
	placeholders := make([]string, len(enrollmentIDs))
	args := make([]interface{}, len(enrollmentIDs))
	for i, id := range enrollmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, enrollment_id, section_id, assessment_type, assessment_name, score, max_score, weight, graded_by, graded_at, created_at, updated_at
        FROM assessment_scores WHERE enrollment_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer rows.Close()
	result := make(map[string][]models.AssessmentScore, len(enrollmentIDs))
	for rows.Next() {
		var score models.AssessmentScore
		if err := rows.StructScan(&score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		result[score.EnrollmentID] = append(result[score.EnrollmentID], score)
	}
	return result, nil
}

// CountBySection returns the number of ledger rows for a section.
func (r *ScoreRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM assessment_scores WHERE section_id = $1", sectionID); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return count, nil
}
