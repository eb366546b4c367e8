package dto

import "net/http"

// Transport-level error codes; domain errors carry their own codes, which
// pass through unchanged.
const (
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes.
// Unknown codes fall back to 500 so new domain errors surface loudly rather
// than silently returning 200.
var domainCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	"INVALID_INPUT": http.StatusBadRequest,
	"NOT_FOUND":     http.StatusNotFound,

	// State conflicts
	"INVALID_STATE":      http.StatusConflict,
	"ALREADY_APPROVED":   http.StatusConflict,
	"ALREADY_REJECTED":   http.StatusConflict,
	"ALREADY_EXISTS":     http.StatusConflict,
	"DUPLICATE_SERIAL":   http.StatusConflict,
	"REQUEST_IN_FLIGHT":  http.StatusConflict,

	// Business rule violations
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
}

// GetHTTPStatus maps an error code to its HTTP status
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
