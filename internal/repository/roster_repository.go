package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeflow-api/internal/models"
)

// RosterRepository reads the enrollment registry: sections, semesters
// and roster membership. The registry is owned by an external system;
// this engine only queries it.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository creates a new roster repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetSection fetches one section. Returns sql.ErrNoRows when unknown.
func (r *RosterRepository) GetSection(ctx context.Context, sectionID string) (*models.Section, error) {
	const query = `SELECT id, course_code, course_title, section_code, semester_id, teacher_id, credits, created_at
        FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, sectionID); err != nil {
		return nil, err
	}
	return &section, nil
}

// GetEnrollment fetches one enrollment. Returns sql.ErrNoRows when unknown.
func (r *RosterRepository) GetEnrollment(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, section_id, joined_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, enrollmentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListRoster returns the enrollments of a section with student display
// names, ordered by student name for stable entry screens.
func (r *RosterRepository) ListRoster(ctx context.Context, sectionID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.section_id, e.joined_at, s.full_name AS student_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.section_id = $1
        ORDER BY s.full_name, e.id`
	var roster []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &roster, query, sectionID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}

// StudentSectionRow joins one of a student's enrollments with its
// section and semester for transcript assembly.
type StudentSectionRow struct {
	EnrollmentID string `db:"enrollment_id"`
	models.Section
	SemesterName  string `db:"semester_name"`
	AcademicYear  string `db:"academic_year"`
	SemesterStart string `db:"semester_start"`
}

// ListStudentSections returns every section a student is enrolled in,
// joined with semester metadata and ordered chronologically by
// semester start date.
func (r *RosterRepository) ListStudentSections(ctx context.Context, studentID string) ([]StudentSectionRow, error) {
	const query = `SELECT e.id AS enrollment_id,
            sec.id, sec.course_code, sec.course_title, sec.section_code, sec.semester_id, sec.teacher_id, sec.credits, sec.created_at,
            sem.name AS semester_name, sem.academic_year, to_char(sem.start_date, 'YYYY-MM-DD') AS semester_start
        FROM enrollments e
        JOIN sections sec ON sec.id = e.section_id
        JOIN semesters sem ON sem.id = sec.semester_id
        WHERE e.student_id = $1
        ORDER BY sem.start_date, sec.course_code`
	var sections []StudentSectionRow
	if err := r.db.SelectContext(ctx, &sections, query, studentID); err != nil {
		return nil, fmt.Errorf("list student sections: %w", err)
	}
	return sections, nil
}

// StudentExists reports whether the student id is known to the registry.
func (r *RosterRepository) StudentExists(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)", studentID); err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return exists, nil
}
