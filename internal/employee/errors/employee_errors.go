package employeeerrors

import (
	"net/http"

	"staffsync/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrStore = apperror.New(
		apperror.CodeInternalError,
		"employee storage failure",
		http.StatusInternalServerError,
	)
)
