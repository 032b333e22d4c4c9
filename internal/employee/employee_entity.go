package employee

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleHR       Role = "HR"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleHR:
		return true
	default:
		return false
	}
}

// Employee is owned by HR administration. LeaveBalance is the granted
// entitlement; consumption is derived from leave requests, never stored here.
type Employee struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(64);uniqueIndex:uq_employee_username;not null"`
	FirstName    string `gorm:"type:varchar(100);not null"`
	LastName     string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex:uq_employee_email;not null"`
	PhoneNumber  string `gorm:"type:varchar(32)"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'Employee'"`
	LeaveBalance int    `gorm:"not null;default:0;check:chk_employee_leave_balance,leave_balance >= 0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
