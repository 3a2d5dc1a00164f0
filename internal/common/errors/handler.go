// internal/common/errors/handler.go
package errors

import (
	"context"
	stderrors "errors"
)

// ErrorHandler normalizes failures caught at the orchestrator boundary, logs
// them and produces the notification text.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle tags err with code, logs it and returns the user-facing message.
// Cancellation of a superseded request is not a failure and yields "".
func (h *ErrorHandler) Handle(code ErrorCode, err error, fields map[string]interface{}) string {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return ""
	}
	stdErr := h.normalizeError(code, err)

	logFields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"statusCode":    stdErr.StatusCode,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	h.logger.Error(stdErr.Message, logFields)

	return UserMessage(stdErr)
}

func (h *ErrorHandler) normalizeError(code ErrorCode, err error) *StandardError {
	var std *StandardError
	if stderrors.As(err, &std) && std.Code == code {
		return std
	}
	return NewOperationError(code, err)
}
