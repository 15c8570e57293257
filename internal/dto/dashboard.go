package dto

// AdminStatsResponse is the admin landing dashboard summary.
type AdminStatsResponse struct {
	TotalStudents     int `json:"totalStudents"`
	TotalTeachers     int `json:"totalTeachers"`
	TotalAdmins       int `json:"totalAdmins"`
	PendingRequests   int `json:"pendingRequests"`
	AverageAttendance int `json:"averageAttendance"`
}

// AttendanceRateResponse is a rounded attendance percentage for a filter set.
type AttendanceRateResponse struct {
	AverageAttendance int `json:"averageAttendance"`
	PresentCount      int `json:"presentCount"`
	TotalCount        int `json:"totalCount"`
}

// ToolUsageStat is one humanised use_* counter.
type ToolUsageStat struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RegistrationTrendPoint is one day in the registrations trend series.
type RegistrationTrendPoint struct {
	Date     string `json:"date"`
	Teachers int    `json:"teachers"`
	Students int    `json:"students"`
}

// ActivityFeedItem is a display-ready recent activity line.
type ActivityFeedItem struct {
	Description string `json:"description"`
	UserName    string `json:"user_name"`
	Role        string `json:"role"`
	Timestamp   string `json:"timestamp"`
}

// TeacherStatsResponse summarises a teacher's classes.
type TeacherStatsResponse struct {
	TotalStudents        int `json:"totalStudents"`
	TotalClasses         int `json:"totalClasses"`
	TotalAssignments     int `json:"totalAssignments"`
	CompletedAssignments int `json:"completedAssignments"`
	AverageAttendance    int `json:"averageAttendance"`
}

// StudentPerformance is one per-student row for the teacher dashboard.
type StudentPerformance struct {
	StudentID            int64  `json:"student_id"`
	FullName             string `json:"full_name"`
	AttendancePercent    int    `json:"attendance_percent"`
	CompletionPercent    int    `json:"completion_percent"`
	AssignmentsTotal     int    `json:"assignments_total"`
	AssignmentsCompleted int    `json:"assignments_completed"`
}

// StudentStatsResponse summarises a student's own dashboard.
type StudentStatsResponse struct {
	UpcomingAssignments int `json:"upcomingAssignments"`
	AttendancePercent   int `json:"attendancePercent"`
	EnrolledCourses     int `json:"enrolledCourses"`
}
