package events

import "time"

const (
	LeaveSubmittedTopic = "staffsync.leave.submitted.v1"
	LeaveDecidedTopic   = "staffsync.leave.decided.v1"

	LeaveSubmittedEventType = "leave_submitted"
	LeaveDecidedEventType   = "leave_decided"
)

type LeaveSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    int64     `json:"leave_id"`
	EmployeeID uint      `json:"employee_id"`
	Username   string    `json:"username"`
	Reason     string    `json:"reason"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       int       `json:"days"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    int64     `json:"leave_id"`
	EmployeeID uint      `json:"employee_id"`
	Status     string    `json:"status"`
	DecidedBy  uint      `json:"decided_by"`
	Days       int       `json:"days"`
	OccurredAt time.Time `json:"occurred_at"`
}
