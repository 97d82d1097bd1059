package models

import "time"

// Semester models one academic period in the institution calendar.
// Semesters order a student's transcript chronologically by start date.
type Semester struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Section is one taught offering of a course in one semester.
type Section struct {
	ID          string    `db:"id" json:"id"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	SectionCode string    `db:"section_code" json:"section_code"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Credits     int       `db:"credits" json:"credits"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Enrollment registers one student to one section. It is the unit of
// grading and attendance; roster membership is supplied by the external
// enrollment registry and read-only to this engine.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SectionID string    `db:"section_id" json:"section_id"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}

// EnrollmentDetail enriches Enrollment with student display info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
}
