package leave

import (
	"time"

	"staffsync/internal/employee"
	leaveerrors "staffsync/internal/leave/errors"
)

// Submit validates in against empl's balance and existing requests and
// returns a new Pending request. The ID is assigned by the store on insert.
func Submit(empl employee.Employee, in SubmitInput, existing []LeaveRequest, now time.Time) (LeaveRequest, error) {
	reason, start, end, err := ValidateSubmission(empl.LeaveBalance, in, existing, now)
	if err != nil {
		return LeaveRequest{}, err
	}

	return LeaveRequest{
		EmployeeID: empl.ID,
		Username:   empl.Username,
		Reason:     reason,
		StartDate:  start,
		EndDate:    end,
		Status:     StatusPending,
		CreatedAt:  now,
	}, nil
}

// Decide moves a Pending request to outcome. Terminal requests fail with
// ErrAlreadyHandled whatever the outcome.
func Decide(r LeaveRequest, outcome Status, now time.Time) (LeaveRequest, error) {
	if r.Status != StatusPending {
		return LeaveRequest{}, leaveerrors.ErrAlreadyHandled
	}
	if !outcome.IsTerminal() {
		return LeaveRequest{}, leaveerrors.ErrInvalidOutcome
	}

	respondedAt := now
	r.Status = outcome
	r.RespondedAt = &respondedAt
	return r, nil
}
