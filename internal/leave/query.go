package leave

import (
	"cmp"
	"iter"
	"slices"
)

// ForReviewer yields every request not owned by excludeUsername, Pending
// first, then Accepted, then Declined, each group by ascending start date.
// The sequence is computed on each iteration and never touches all.
func ForReviewer(all []LeaveRequest, excludeUsername string) iter.Seq[LeaveRequest] {
	return func(yield func(LeaveRequest) bool) {
		view := make([]LeaveRequest, 0, len(all))
		for _, r := range all {
			if r.Username != excludeUsername {
				view = append(view, r)
			}
		}
		slices.SortFunc(view, compareForReview)
		for _, r := range view {
			if !yield(r) {
				return
			}
		}
	}
}

// ForEmployee yields username's requests by ascending start date.
func ForEmployee(all []LeaveRequest, username string) iter.Seq[LeaveRequest] {
	return func(yield func(LeaveRequest) bool) {
		view := make([]LeaveRequest, 0, len(all))
		for _, r := range all {
			if r.Username == username {
				view = append(view, r)
			}
		}
		slices.SortFunc(view, compareByStart)
		for _, r := range view {
			if !yield(r) {
				return
			}
		}
	}
}

// FilterByReview keeps the requests f selects, preserving order.
func FilterByReview(seq iter.Seq[LeaveRequest], f ReviewFilter) iter.Seq[LeaveRequest] {
	return func(yield func(LeaveRequest) bool) {
		for r := range seq {
			if !f.matches(r.Status) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func compareForReview(a, b LeaveRequest) int {
	if c := cmp.Compare(a.Status.reviewPriority(), b.Status.reviewPriority()); c != 0 {
		return c
	}
	return compareByStart(a, b)
}

func compareByStart(a, b LeaveRequest) int {
	if c := a.StartDate.Compare(b.StartDate); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
