package models

import "time"

// Class is a homeroom group students are allocated to.
type Class struct {
	ID   int64  `db:"class_id" json:"class_id"`
	Name string `db:"class_name" json:"class_name"`
}

// Course is a taught subject.
type Course struct {
	ID   int64  `db:"course_id" json:"course_id"`
	Name string `db:"course_name" json:"course_name"`
}

// ClassCourse links a teacher to a class+course pair over a date range.
type ClassCourse struct {
	ID        int64      `db:"id" json:"id"`
	ClassID   int64      `db:"class_id" json:"class_id"`
	CourseID  int64      `db:"course_id" json:"course_id"`
	TeacherID int64      `db:"teacher_id" json:"teacher_id"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// ClassCourseDetail is an allocation row joined with display names.
type ClassCourseDetail struct {
	ID          int64      `db:"id" json:"id"`
	ClassID     int64      `db:"class_id" json:"class_id"`
	CourseID    int64      `db:"course_id" json:"course_id"`
	TeacherID   int64      `db:"teacher_id" json:"teacher_id"`
	ClassName   string     `db:"class_name" json:"class_name"`
	CourseName  string     `db:"course_name" json:"course_name"`
	TeacherName string     `db:"teacher_name" json:"teacher_name"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
}
