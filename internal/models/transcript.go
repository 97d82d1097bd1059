package models

// TranscriptCourse is one published course grade inside a semester row.
type TranscriptCourse struct {
	CourseCode  string  `json:"course_code"`
	CourseTitle string  `json:"course_title"`
	SectionCode string  `json:"section_code"`
	Credits     int     `json:"credits"`
	Percentage  float64 `json:"percentage"`
	Letter      string  `json:"letter"`
	GPAPoints   float64 `json:"gpa_points"`
}

// TranscriptEntry aggregates one semester of published course grades.
// CumulativeGPA is the credit-weighted average over this semester and
// all prior included semesters, so each historical row shows the value
// as of that point in the student's history.
type TranscriptEntry struct {
	SemesterID    string             `json:"semester_id"`
	SemesterName  string             `json:"semester_name"`
	AcademicYear  string             `json:"academic_year"`
	Courses       []TranscriptCourse `json:"courses"`
	Credits       int                `json:"credits"`
	SemesterGPA   float64            `json:"semester_gpa"`
	CumulativeGPA float64            `json:"cumulative_gpa"`
}

// Transcript is a student's multi-semester view assembled from
// published sections only. CumulativeGPA is null when no semester has
// been published yet; that is an empty transcript, not an error.
type Transcript struct {
	StudentID     string            `json:"student_id"`
	Semesters     []TranscriptEntry `json:"semesters"`
	CumulativeGPA *float64          `json:"cumulative_gpa"`
	TotalCredits  int               `json:"total_credits"`
}
