package models

import "time"

// AttendanceStatus uses the original small-int encoding:
// 0 absent, 1 present, 2 excused.
type AttendanceStatus int

const (
	AttendanceAbsent  AttendanceStatus = 0
	AttendancePresent AttendanceStatus = 1
	AttendanceExcused AttendanceStatus = 2
)

// Valid reports whether the status is a known encoding.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceAbsent || s == AttendancePresent || s == AttendanceExcused
}

// Attendance is one per-user per-day attendance mark.
type Attendance struct {
	ID            int64            `db:"id" json:"id"`
	UserID        int64            `db:"user_id" json:"user_id"`
	Role          UserRole         `db:"role" json:"role"`
	ClassCourseID *int64           `db:"class_course_id" json:"class_course_id,omitempty"`
	Date          time.Time        `db:"attendance_date" json:"attendance_date"`
	Status        AttendanceStatus `db:"attendance_status" json:"attendance_status"`
}

// TimeRange is a named lookback window for attendance aggregation.
type TimeRange string

const (
	RangeWeek     TimeRange = "week"
	RangeMonth    TimeRange = "month"
	RangeSemester TimeRange = "semester"
	RangeYear     TimeRange = "year"
)

// WindowStart maps the range onto its lookback anchor. Unknown or empty
// ranges fall back to one month.
func (r TimeRange) WindowStart(now time.Time) time.Time {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeSemester:
		return now.AddDate(0, -6, 0)
	case RangeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// AttendanceFilter narrows attendance-rate queries.
type AttendanceFilter struct {
	Role      UserRole
	UserID    *int64
	ClassID   *int64
	TimeRange TimeRange
}

// AttendanceTally is a present/total pair ready for percentage math.
type AttendanceTally struct {
	Present int `db:"present_count"`
	Total   int `db:"total_count"`
}
