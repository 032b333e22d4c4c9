package leave

import (
	"strings"
	"time"

	leaveerrors "staffsync/internal/leave/errors"
)

// SubmitInput is a submission as the employee typed it. Dates are ISO-8601
// calendar dates.
type SubmitInput struct {
	Reason    string
	StartDate string
	EndDate   string
}

// ValidateSubmission applies the submission rules in a fixed order: fields,
// date ordering, past start, balance. existing must hold the employee's own
// requests; Declined ones are ignored by the ledger.
func ValidateSubmission(granted int, in SubmitInput, existing []LeaveRequest, now time.Time) (Reason, time.Time, time.Time, error) {
	reason := Reason(strings.TrimSpace(in.Reason))
	if !reason.IsValid() {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrMissingReason
	}

	start, errStart := ParseDate(in.StartDate)
	end, errEnd := ParseDate(in.EndDate)
	if errStart != nil || errEnd != nil {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrMissingDates
	}

	days := DaySpan(start, end)
	if days <= 0 {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrStartNotBeforeEnd
	}

	if DaySpan(now, start) < 0 {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrStartInPast
	}

	if days > RemainingBalance(granted, existing) {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInsufficientBalance
	}

	return reason, start, end, nil
}
