package utils

import (
	"net/http"
	"strings"

	"meridian/kudos_credit_ledger/internal/pkg/models"
)

func GetErrorCode(err error) string {
	if customErr, ok := err.(*models.CustomError); ok {
		return customErr.ErrorCode()
	}
	return "KUDOS_INTERNAL_ERROR"
}

// HTTPStatusForError maps the error code taxonomy onto HTTP statuses.
func HTTPStatusForError(err error) int {
	code := GetErrorCode(err)
	switch {
	case strings.HasPrefix(code, "KUDOS_VALIDATION_"):
		return http.StatusBadRequest
	case code == "KUDOS_STATE_LOAN_NOT_FOUND":
		return http.StatusNotFound
	case code == "KUDOS_STATE_LEDGER_PAUSED":
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "KUDOS_STATE_"), strings.HasPrefix(code, "KUDOS_REENTRANCY_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "KUDOS_POLICY_"):
		return http.StatusForbidden
	case strings.HasPrefix(code, "KUDOS_RESOURCE_"), strings.HasPrefix(code, "KUDOS_CUSTODY_"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "KUDOS_DEPENDENCY_"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody builds the JSON error payload for a failed request.
func ErrorBody(err error) models.ErrorResponse {
	return models.ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
}
