// Package errors provides the structured error model shared by the HTTP layer
// and the Zeebe workers.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is a stable, machine readable error identifier.
type ErrorCode string

const (
	ErrCodeInvalidRequestBody  ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeJobValidationFailed ErrorCode = "JOB_VALIDATION_FAILED"
	ErrCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"

	ErrCodeBoardStoreFailed ErrorCode = "BOARD_STORE_FAILED"
	ErrCodeUndoUnavailable  ErrorCode = "UNDO_UNAVAILABLE"
	ErrCodeUndoStoreFailed  ErrorCode = "UNDO_STORE_FAILED"
	ErrCodeReadOnlyBoard    ErrorCode = "READ_ONLY_BOARD"

	ErrCodeAgentTransportFailed   ErrorCode = "AGENT_TRANSPORT_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIntentParsingFailed    ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeWorkflowEngineFailed   ErrorCode = "WORKFLOW_ENGINE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata sets one metadata key and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what gets thrown to the Camunda engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestBodyError(err error) *StandardError {
	return newError(ErrCodeInvalidRequestBody, "Request body is not valid JSON", errDetails(err), false)
}

func NewJobValidationFailedError(details string) *StandardError {
	return newError(ErrCodeJobValidationFailed, "Job record failed validation", details, false)
}

func NewJobNotFoundError(jobID string) *StandardError {
	return newError(ErrCodeJobNotFound, "Job not found on the board", fmt.Sprintf("jobId: %s", jobID), false)
}

// NewBoardStoreFailedError is retryable; storage errors are usually transient.
func NewBoardStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeBoardStoreFailed, "Board storage error",
		fmt.Sprintf("op: %s, error: %s", op, errDetails(err)), true)
}

func NewUndoUnavailableError() *StandardError {
	return newError(ErrCodeUndoUnavailable, "Nothing to undo", "", false)
}

func NewUndoStoreFailedError(err error) *StandardError {
	return newError(ErrCodeUndoStoreFailed, "Undo snapshot storage error", errDetails(err), true)
}

func NewReadOnlyBoardError() *StandardError {
	return newError(ErrCodeReadOnlyBoard, "Board is read-only", "", false)
}

func NewAgentTransportFailedError(err error) *StandardError {
	return newError(ErrCodeAgentTransportFailed, "Agent server unreachable", errDetails(err), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send notification",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true)
}

func NewIntentParsingFailedError(err error) *StandardError {
	return newError(ErrCodeIntentParsingFailed, "Command could not be parsed", errDetails(err), false)
}

func NewWorkflowEngineFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowEngineFailed, "Zeebe operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBoardStoreFailed,
		ErrCodeUndoStoreFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeAgentTransportFailed, ErrCodeWorkflowEngineFailed:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError onto a BPMN error. BPMN codes are
// identical to the internal ones.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UNDO"):
		return "UNDO"
	case strings.Contains(codeStr, "BOARD") || strings.Contains(codeStr, "JOB_NOT_FOUND"):
		return "BOARD"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "AGENT") || strings.Contains(codeStr, "INTENT"):
		return "AGENT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code onto the response status the API returns.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequestBody, ErrCodeJobValidationFailed, ErrCodeIntentParsingFailed:
		return http.StatusBadRequest
	case ErrCodeJobNotFound:
		return http.StatusNotFound
	case ErrCodeUndoUnavailable:
		return http.StatusConflict
	case ErrCodeReadOnlyBoard:
		return http.StatusForbidden
	case ErrCodeAgentTransportFailed, ErrCodeWorkflowEngineFailed:
		return http.StatusBadGateway
	case ErrCodeBoardStoreFailed, ErrCodeUndoStoreFailed, ErrCodeNotificationSendFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteJSON renders err as an error response.
func WriteJSON(w http.ResponseWriter, err error) {
	stdErr := AsStandardError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(stdErr.Code))
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error:   string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}
