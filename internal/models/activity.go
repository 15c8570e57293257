package models

import "time"

// Activity names written by the workflows. Names starting with use_ feed the
// tool-usage statistics; names shaped like "METHOD /path" are request-trail
// noise and are filtered out of human-facing feeds.
const (
	ActivityLogin                  = "login"
	ActivityApproveRegistration    = "approve_registration"
	ActivityRejectRegistration     = "reject_registration"
	ActivityDeactivateUser         = "deactivate_user"
	ActivityReactivateUser         = "reactivate_user"
	ActivityCreateAssignment       = "create_assignment"
	ActivityUpdateAssignmentStatus = "update_assignment_status"
	ActivityMarkAttendance         = "mark_attendance"
	ActivityUseAITool              = "use_ai_tool"
	ActivityUseLessonPlan          = "use_lesson_plan"
)

// Activity is one append-only audit trail entry.
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	Role      string    `db:"role" json:"role"`
	Name      string    `db:"activity_name" json:"activity_name"`
	Timestamp time.Time `db:"activity_timestamp" json:"activity_timestamp"`
}

// ActivityFeedRow is a raw feed row joined with the actor's display name.
type ActivityFeedRow struct {
	Name      string    `db:"activity_name" json:"activity_name"`
	Role      string    `db:"role" json:"role"`
	Timestamp time.Time `db:"activity_timestamp" json:"activity_timestamp"`
	UserName  string    `db:"user_name" json:"user_name"`
}

// ActivityFilter narrows dashboard activity feeds.
type ActivityFilter struct {
	Role    string
	UserID  *int64
	ClassID *int64
}

// ToolUsageCount is one aggregated use_* activity bucket.
type ToolUsageCount struct {
	Name  string `db:"activity_name"`
	Count int    `db:"usage_count"`
}
