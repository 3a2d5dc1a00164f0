// Package errors provides the standardized error type used between the REST
// client and the search orchestrator.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeOptionLoadFailed    ErrorCode = "OPTION_LOAD_FAILED"
	ErrCodeSearchFailed        ErrorCode = "SEARCH_FAILED"
	ErrCodeBoundsSearchFailed  ErrorCode = "BOUNDS_SEARCH_FAILED"
	ErrCodeFavoritesLoadFailed ErrorCode = "FAVORITES_LOAD_FAILED"
	ErrCodeSuggestionsFailed   ErrorCode = "SUGGESTIONS_FAILED"

	ErrCodeEndpointNotFound   ErrorCode = "ENDPOINT_NOT_FOUND"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrCodeInvalidResponse    ErrorCode = "INVALID_RESPONSE"
	ErrCodeInvalidFilterValue ErrorCode = "INVALID_FILTER_VALUE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	cause      error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewHTTPStatusError classifies a non-2xx response from the backend.
func NewHTTPStatusError(method, path string, status int, body string) *StandardError {
	code := ErrCodeRequestFailed
	switch status {
	case http.StatusNotFound:
		code = ErrCodeEndpointNotFound
	case http.StatusUnauthorized:
		code = ErrCodeNotAuthenticated
	}
	return &StandardError{
		Code:       code,
		Message:    fmt.Sprintf("%s %s returned HTTP %d", method, path, status),
		Details:    truncate(body, 256),
		Retryable:  status >= 500,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRequestFailedError wraps a transport level failure.
func NewRequestFailedError(method, path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestFailed,
		Message:   fmt.Sprintf("%s %s failed", method, path),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidResponseError reports a payload that does not match its contract.
func NewInvalidResponseError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidResponse,
		Message:   fmt.Sprintf("unexpected response from %s", path),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidFilterValueError(field, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterValue,
		Message:   "Invalid filter value",
		Details:   fmt.Sprintf("%s: %q", field, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewOperationError tags an underlying failure with the operation that saw it.
func NewOperationError(code ErrorCode, err error) *StandardError {
	std := &StandardError{
		Code:      code,
		Message:   defaultMessages[code],
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
	var inner *StandardError
	if stderrors.As(err, &inner) {
		std.StatusCode = inner.StatusCode
		std.Retryable = inner.Retryable
	}
	return std
}

var defaultMessages = map[ErrorCode]string{
	ErrCodeOptionLoadFailed:    "Filter options could not be loaded",
	ErrCodeSearchFailed:        "Facility search failed",
	ErrCodeBoundsSearchFailed:  "Map area search failed",
	ErrCodeFavoritesLoadFailed: "Favorites could not be loaded",
	ErrCodeSuggestionsFailed:   "Suggestions could not be loaded",
}

// userMessages are the notification texts shown by the front-end.
var userMessages = map[ErrorCode]string{
	ErrCodeSearchFailed:        "검색 중 오류가 발생했습니다.",
	ErrCodeBoundsSearchFailed:  "지도 영역 검색 중 오류가 발생했습니다.",
	ErrCodeFavoritesLoadFailed: "즐겨찾기 목록을 불러오지 못했습니다.",
	ErrCodeNotAuthenticated:    "로그인이 필요합니다.",
}

// UserMessage returns the short notification text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var std *StandardError
	if !stderrors.As(err, &std) {
		return "알 수 없는 오류가 발생했습니다."
	}
	if std.StatusCode == http.StatusUnauthorized && std.Code != ErrCodeNotAuthenticated {
		if msg, ok := userMessages[std.Code]; ok {
			return msg + " (" + userMessages[ErrCodeNotAuthenticated] + ")"
		}
	}
	if msg, ok := userMessages[std.Code]; ok {
		return msg
	}
	return "요청을 처리하지 못했습니다."
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// CodeOf returns the code of the outermost StandardError in the chain.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "OPTION"):
		return "OPTIONS"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "SUGGESTIONS"):
		return "SEARCH"
	case strings.Contains(codeStr, "FAVORITES"):
		return "FAVORITES"
	case strings.Contains(codeStr, "AUTHENTICATED"):
		return "AUTH"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REQUEST") || strings.Contains(codeStr, "ENDPOINT"):
		return "TRANSPORT"
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
