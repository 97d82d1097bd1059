package models

import "time"

// AssessmentType categorises a gradeable item within a section.
type AssessmentType string

const (
	AssessmentTypeQuiz       AssessmentType = "QUIZ"
	AssessmentTypeAssignment AssessmentType = "ASSIGNMENT"
	AssessmentTypeMidterm    AssessmentType = "MIDTERM"
	AssessmentTypeFinal      AssessmentType = "FINAL"
	AssessmentTypeProject    AssessmentType = "PROJECT"
)

// Valid returns true when the type is a supported value.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentTypeQuiz, AssessmentTypeAssignment, AssessmentTypeMidterm,
		AssessmentTypeFinal, AssessmentTypeProject:
		return true
	default:
		return false
	}
}

// AssessmentScore is one recorded score for one enrollment. Rows are
// unique per (enrollment_id, assessment_name) and mutable only while
// the owning section is in an editable workflow status.
type AssessmentScore struct {
	ID             string         `db:"id" json:"id"`
	EnrollmentID   string         `db:"enrollment_id" json:"enrollment_id"`
	SectionID      string         `db:"section_id" json:"section_id"`
	AssessmentType AssessmentType `db:"assessment_type" json:"assessment_type"`
	AssessmentName string         `db:"assessment_name" json:"assessment_name"`
	Score          float64        `db:"score" json:"score"`
	MaxScore       float64        `db:"max_score" json:"max_score"`
	Weight         *float64       `db:"weight" json:"weight,omitempty"`
	GradedBy       string         `db:"graded_by" json:"graded_by"`
	GradedAt       time.Time      `db:"graded_at" json:"graded_at"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// GradeBand maps a minimum percentage to a letter grade and GPA points.
type GradeBand struct {
	MinPercentage float64 `json:"min_percentage"`
	Letter        string  `json:"letter"`
	Points        float64 `json:"points"`
}

// DefaultGradingScale returns the institutional default breakpoint
// table, scanned descending; the first band whose floor is at or below
// the percentage wins. Institutions may supply their own table.
func DefaultGradingScale() []GradeBand {
	return []GradeBand{
		{97, "A+", 4.0},
		{93, "A", 4.0},
		{90, "A-", 3.7},
		{87, "B+", 3.3},
		{83, "B", 3.0},
		{80, "B-", 2.7},
		{77, "C+", 2.3},
		{73, "C", 2.0},
		{70, "C-", 1.7},
		{67, "D+", 1.3},
		{60, "D", 1.0},
		{0, "F", 0.0},
	}
}

// GradeSummary is the derived per-enrollment course result. It is never
// persisted; it is recomputed on read from the ledger and the section's
// workflow state.
type GradeSummary struct {
	EnrollmentID string        `json:"enrollment_id"`
	StudentID    string        `json:"student_id"`
	StudentName  string        `json:"student_name,omitempty"`
	CourseCode   string        `json:"course_code"`
	SectionCode  string        `json:"section_code"`
	Percentage   *float64      `json:"percentage"`
	Letter       *string       `json:"letter"`
	GPAPoints    *float64      `json:"gpa_points"`
	Passed       *bool         `json:"passed,omitempty"`
	Status       SectionStatus `json:"status"`
}

// GradeDistribution summarises section-wide percentages for the
// summary response metadata.
type GradeDistribution struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Average *float64 `json:"average,omitempty"`
}
