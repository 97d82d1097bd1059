package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeflow-api/internal/models"
)

// AttendanceRepository persists attendance records. One row per
// (enrollment, date); re-marking a date overwrites the status.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkUpsert writes one day's records for a section in a single
// transaction; a failed batch writes nothing.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attendance tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		const query = `INSERT INTO attendance_records (id, enrollment_id, section_id, date, status, marked_by, created_at, updated_at)
            VALUES (:id, :enrollment_id, :section_id, :date, :status, :marked_by, :created_at, :updated_at)
            ON CONFLICT (enrollment_id, date)
            DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("upsert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attendance: %w", err)
	}
	return len(records), nil
}

// StatusCounts aggregates marked days per status for one enrollment.
// Dates never marked simply do not appear; they are not absences.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, enrollmentID string) (map[models.AttendanceStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM attendance_records WHERE enrollment_id = $1 GROUP BY status`
	rows, err := r.db.QueryxContext(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	defer rows.Close()
	counts := make(map[models.AttendanceStatus]int, 4)
	for rows.Next() {
		var row struct {
			Status models.AttendanceStatus `db:"status"`
			Count  int                     `db:"count"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan attendance count: %w", err)
		}
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListBySectionAndDate returns the marked records for one section day.
func (r *AttendanceRepository) ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, enrollment_id, section_id, date, status, marked_by, created_at, updated_at
        FROM attendance_records WHERE section_id = $1 AND date = $2 ORDER BY enrollment_id`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sectionID, date); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
