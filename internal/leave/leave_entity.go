package leave

import (
	"time"
)

// LeaveRequest is created Pending and decided exactly once. RespondedAt is
// nil exactly while Status is Pending.
type LeaveRequest struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	EmployeeID  uint      `gorm:"not null;index:idx_leave_requests_employee_start"`
	Username    string    `gorm:"type:varchar(64);not null"`
	Reason      Reason    `gorm:"type:varchar(20);not null"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_start"`
	EndDate     time.Time `gorm:"type:date;not null;check:chk_leave_requests_dates,end_date > start_date"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'Pending';index:idx_leave_requests_status"`
	CreatedAt   time.Time
	RespondedAt *time.Time
	RespondedBy *uint
}

// Duration is the number of days the request covers, end date exclusive.
func (r LeaveRequest) Duration() int {
	return DaySpan(r.StartDate, r.EndDate)
}
