package leave

import (
	"github.com/go-playground/validator/v10"
)

// Reason is the closed set of leave categories.
type Reason string

const (
	ReasonHoliday  Reason = "Holiday"
	ReasonSick     Reason = "Sick"
	ReasonParental Reason = "Parental"
	ReasonStudy    Reason = "Study"
	ReasonTraining Reason = "Training"
	ReasonFamily   Reason = "Family"
)

var Reasons = []Reason{
	ReasonHoliday,
	ReasonSick,
	ReasonParental,
	ReasonStudy,
	ReasonTraining,
	ReasonFamily,
}

func (r Reason) IsValid() bool {
	switch r {
	case ReasonHoliday, ReasonSick, ReasonParental, ReasonStudy, ReasonTraining, ReasonFamily:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusDeclined Status = "Declined"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// reviewPriority orders the review queue: Pending, Accepted, Declined.
func (s Status) reviewPriority() int {
	switch s {
	case StatusPending:
		return 1
	case StatusAccepted:
		return 2
	case StatusDeclined:
		return 3
	default:
		return 4
	}
}

// ReviewFilter narrows the review queue.
type ReviewFilter string

const (
	ReviewPending ReviewFilter = "pending"
	ReviewHandled ReviewFilter = "handled"
	ReviewAll     ReviewFilter = "all"
)

func (f ReviewFilter) IsValid() bool {
	switch f {
	case ReviewPending, ReviewHandled, ReviewAll:
		return true
	default:
		return false
	}
}

func (f ReviewFilter) matches(s Status) bool {
	switch f {
	case ReviewPending:
		return s == StatusPending
	case ReviewHandled:
		return s.IsTerminal()
	default:
		return true
	}
}

// RegisterValidators adds the review_filter binding tag. Pass it to
// apperror.Init.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("review_filter", func(fl validator.FieldLevel) bool {
		return ReviewFilter(fl.Field().String()).IsValid()
	})
}
