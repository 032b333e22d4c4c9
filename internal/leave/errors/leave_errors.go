package leaveerrors

import (
	"net/http"

	"staffsync/internal/shared/apperror"
)

// Submission rejections, in the order the policy checks them.
var (
	ErrMissingReason = apperror.New(
		apperror.CodeValidationFailed,
		"missing reason",
		http.StatusUnprocessableEntity,
	)
	ErrMissingDates = apperror.New(
		apperror.CodeValidationFailed,
		"missing dates",
		http.StatusUnprocessableEntity,
	)
	ErrStartNotBeforeEnd = apperror.New(
		apperror.CodeValidationFailed,
		"start must precede end",
		http.StatusUnprocessableEntity,
	)
	ErrStartInPast = apperror.New(
		apperror.CodeValidationFailed,
		"start date in the past",
		http.StatusUnprocessableEntity,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeValidationFailed,
		"insufficient balance",
		http.StatusUnprocessableEntity,
	)
)

var (
	ErrAlreadyHandled = apperror.New(
		apperror.CodeInvalidState,
		"leave request already handled",
		http.StatusConflict,
	)
	ErrInvalidOutcome = apperror.New(
		apperror.CodeInvalidInput,
		"invalid decision outcome",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidReviewFilter = apperror.New(
		apperror.CodeInvalidInput,
		"filter must be one of pending, handled, all",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"reviewers cannot decide their own leave requests",
		http.StatusForbidden,
	)
	ErrReadForbidden = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another employee",
		http.StatusForbidden,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"leave data was modified concurrently, retry the request",
		http.StatusConflict,
	)
	ErrStore = apperror.New(
		apperror.CodeInternalError,
		"leave storage failure",
		http.StatusInternalServerError,
	)
)
