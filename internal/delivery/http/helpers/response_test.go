package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfpportal/internal/domain"
)

func TestWriteServiceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "validation", err: fmt.Errorf("save: %w", domain.NewValidationError(map[string]string{"title": "required", "bio": "required"})), wantStatus: http.StatusPreconditionFailed, wantCode: ErrCodeValidationFailed},
		{name: "unauthorized", err: fmt.Errorf("x: %w", domain.ErrUnauthorized), wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: ErrCodeNotFound},
		{name: "locked", err: fmt.Errorf("p 1: %w", domain.ErrPresentationLocked), wantStatus: http.StatusConflict, wantCode: ErrCodePresentationLocked},
		{name: "conflict", err: domain.ErrConflict, wantStatus: http.StatusConflict, wantCode: ErrCodeConflict},
		{name: "invalid input", err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
		{name: "upstream", err: fmt.Errorf("get: %w", domain.ErrUpstream), wantStatus: http.StatusBadGateway, wantCode: ErrCodeUpstreamError},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteServiceError(rr, httptest.NewRequest(http.MethodGet, "/api/v1/x", nil), logger, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var envelope APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Nil(t, envelope.Data)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}

func TestWriteValidationError_fields(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteValidationError(rr, domain.NewValidationError(map[string]string{"title": "required", "bio": "too short"}))

	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Equal(t, map[string]string{"title": "required", "bio": "too short"}, envelope.Error.Fields)
	assert.Equal(t, "bio", envelope.Error.FirstField)
}

func TestWriteServiceError_canceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	WriteServiceError(rr, req, slog.New(slog.NewTextHandler(io.Discard, nil)), fmt.Errorf("list: %w", context.Canceled))
	assert.Empty(t, rr.Body.String())
}
