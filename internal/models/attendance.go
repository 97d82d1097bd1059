package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent,
		AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance rate labels. The threshold is a display cue only; the
// engine enforces no downstream action on it.
const (
	AttendanceLabelSatisfactory = "satisfactory"
	AttendanceLabelAtRisk       = "at_risk"
)

// AttendanceRecord is one marked day for one enrollment. Records are
// supplied through bulk entry and read-only to the aggregation side.
type AttendanceRecord struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	SectionID    string           `db:"section_id" json:"section_id"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	MarkedBy     string           `db:"marked_by" json:"marked_by"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary is the derived per-enrollment attendance view.
// Total counts only marked days; unmarked dates never count against
// the student.
type AttendanceSummary struct {
	EnrollmentID string  `json:"enrollment_id"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Late         int     `json:"late"`
	Excused      int     `json:"excused"`
	Total        int     `json:"total"`
	Rate         float64 `json:"rate"`
	Label        string  `json:"label"`
}
