package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInvalidRequestBody, http.StatusBadRequest},
		{ErrCodeJobValidationFailed, http.StatusBadRequest},
		{ErrCodeJobNotFound, http.StatusNotFound},
		{ErrCodeUndoUnavailable, http.StatusConflict},
		{ErrCodeReadOnlyBoard, http.StatusForbidden},
		{ErrCodeAgentTransportFailed, http.StatusBadGateway},
		{ErrCodeBoardStoreFailed, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.code))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, NewReadOnlyBoardError())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "READ_ONLY_BOARD", body.Error)
	assert.Equal(t, "Board is read-only", body.Message)
}

func TestWriteJSON_PlainErrorBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, stderrors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
	assert.Equal(t, "boom", body.Details)
}

func TestAsStandardError_Unwraps(t *testing.T) {
	inner := NewJobNotFoundError("job-1")
	wrapped := fmt.Errorf("move: %w", inner)

	got := AsStandardError(wrapped)
	assert.Same(t, inner, got)
	assert.Equal(t, "jobId: job-1", got.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable storage error keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewBoardStoreFailedError("save", stderrors.New("conn reset")))
		assert.Equal(t, "BOARD_STORE_FAILED", bpmn.Code)
		assert.True(t, bpmn.Retryable)
		assert.Equal(t, 3, bpmn.Retries)
		assert.Equal(t, "BOARD_STORE_FAILED", bpmn.ErrorVariables["originalErrorCode"])
	})

	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewJobNotFoundError("x"))
		assert.False(t, bpmn.Retryable)
		assert.Equal(t, 0, bpmn.Retries)
	})

	t.Run("non retryable flag overrides code", func(t *testing.T) {
		stdErr := NewBoardStoreFailedError("save", stderrors.New("x"))
		stdErr.Retryable = false
		assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
	})
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmn := &BPMNError{
		Code:           "JOB_NOT_FOUND",
		Message:        "Job not found on the board",
		ErrorVariables: map[string]interface{}{"company": "Acme"},
	}
	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "JOB_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "Acme", vars["company"])
	assert.Equal(t, false, vars["retryable"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "UNDO", GetErrorCategory(ErrCodeUndoStoreFailed))
	assert.Equal(t, "UNDO", GetErrorCategory(ErrCodeUndoUnavailable))
	assert.Equal(t, "BOARD", GetErrorCategory(ErrCodeBoardStoreFailed))
	assert.Equal(t, "BOARD", GetErrorCategory(ErrCodeJobNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "AGENT", GetErrorCategory(ErrCodeIntentParsingFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeJobValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewJobNotFoundError("x").WithMetadata("company", "Acme")
	assert.Equal(t, "Acme", err.Metadata["company"])
	assert.Contains(t, err.Error(), "JOB_NOT_FOUND")
	assert.True(t, IsRetryableErrorCode(ErrCodeBoardStoreFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeReadOnlyBoard))
}
