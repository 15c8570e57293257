package models

import "time"

// AssignmentStatus is a student's progress on an assignment.
type AssignmentStatus string

const (
	AssignmentNotAttempted AssignmentStatus = "Not Attempted"
	AssignmentPending      AssignmentStatus = "Pending"
	AssignmentInProgress   AssignmentStatus = "In Progress"
	AssignmentCompleted    AssignmentStatus = "Completed"
)

// Valid reports whether the status is one of the accepted values.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentNotAttempted, AssignmentPending, AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

// Assignment is a piece of work a teacher sets for a class+course.
type Assignment struct {
	ID            int64     `db:"assignment_id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	ClassCourseID int64     `db:"class_course_id" json:"class_course_id"`
	TeacherID     int64     `db:"created_by_teacher_id" json:"teacher_id"`
	DueDate       time.Time `db:"due_date" json:"due_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// TeacherAssignmentRow is a teacher-facing listing row with resolved names.
type TeacherAssignmentRow struct {
	ID             int64     `db:"assignment_id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	DueDate        time.Time `db:"due_date" json:"dueDate"`
	ClassID        int64     `db:"class_id" json:"class_id"`
	ClassName      string    `db:"class_name" json:"className"`
	CourseID       int64     `db:"course_id" json:"course_id"`
	CourseName     string    `db:"course_name" json:"courseName"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	TotalStudents  int       `db:"total_students" json:"totalStudents"`
	SubmittedCount int       `db:"submitted_count" json:"submittedCount"`
}

// CompletionTally is a completed/total pair for assignment progress math.
type CompletionTally struct {
	Completed int `db:"completed_count"`
	Total     int `db:"total_count"`
}

// StudentAssignmentRow is a student-facing listing row.
type StudentAssignmentRow struct {
	ID          int64            `db:"assignment_id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	CourseName  string           `db:"course_name" json:"course_name"`
	TeacherName string           `db:"teacher_name" json:"teacher_name"`
	DueDate     time.Time        `db:"due_date" json:"due_date"`
	Status      AssignmentStatus `db:"status" json:"status"`
}
