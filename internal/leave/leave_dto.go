package leave

type SubmitLeaveRequest struct {
	Reason    string `json:"reason"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type DecideLeaveRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReviewQuery struct {
	Filter string `form:"filter" json:"filter" binding:"omitempty,review_filter"`
}

type LeaveResponse struct {
	ID          int64   `json:"id"`
	EmployeeID  uint    `json:"employee_id"`
	Username    string  `json:"username"`
	Reason      string  `json:"reason"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Days        int     `json:"days"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	RespondedAt *string `json:"responded_at,omitempty"`
	RespondedBy *uint   `json:"responded_by,omitempty"`
}

type BalanceSummaryResponse struct {
	EmployeeID uint `json:"employee_id"`
	Granted    int  `json:"granted"`
	Used       int  `json:"used"`
	Remaining  int  `json:"remaining"`
}

type EmployeeLeavesResponse struct {
	Requests []LeaveResponse        `json:"requests"`
	Balance  BalanceSummaryResponse `json:"balance"`
}
