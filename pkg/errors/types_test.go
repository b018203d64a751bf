package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		http int
	}{
		{"not found", NotFound("episode", "042"), ErrCodeNotFound, http.StatusNotFound},
		{"locked", New(ErrCodeLocked, "registry in use"), ErrCodeLocked, http.StatusConflict},
		{"malformed timestamp", MalformedTimestamp("1:75", "minutes out of range"), ErrCodeMalformedTimestamp, http.StatusBadRequest},
		{"incomplete bundle", IncompleteBundle("043"), ErrCodeIncompleteBundle, http.StatusUnprocessableEntity},
		{"database", DatabaseError("list", io.EOF), ErrCodeDatabaseQuery, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ingest: %w", ValidationError("limit", "too large")), ErrCodeValidation, http.StatusBadRequest},
		{"plain", io.EOF, ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.http, GetHTTPCode(tt.err))
		})
	}
}

func TestAppError(t *testing.T) {
	err := DatabaseError("flush registry", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "caused by")
	assert.Equal(t, "flush registry", err.Details["operation"])

	assert.True(t, Is(fmt.Errorf("run: %w", IncompleteBundle("7")), ErrCodeIncompleteBundle))
	assert.False(t, Is(io.EOF, ErrCodeIncompleteBundle))

	custom := &AppError{Code: ErrCodeNotFound, HTTPCode: http.StatusGone}
	assert.Equal(t, http.StatusGone, custom.GetHTTPCode())
}
