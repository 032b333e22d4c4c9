package leave

type BalanceSummary struct {
	Granted   int
	Used      int
	Remaining int
}

// Consumed sums the duration of every request that is not Declined.
// Pending requests count so that two outstanding requests cannot overbook.
func Consumed(requests []LeaveRequest) int {
	used := 0
	for _, r := range requests {
		if r.Status == StatusDeclined {
			continue
		}
		used += r.Duration()
	}
	return used
}

// RemainingBalance may be negative when the grant was lowered after
// approval. It is reported as is.
func RemainingBalance(granted int, requests []LeaveRequest) int {
	return granted - Consumed(requests)
}

func Summarize(granted int, requests []LeaveRequest) BalanceSummary {
	used := Consumed(requests)
	return BalanceSummary{
		Granted:   granted,
		Used:      used,
		Remaining: granted - used,
	}
}
