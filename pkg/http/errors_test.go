package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/credguard/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, 400, "test_error", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
}

func TestCommonWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w *httptest.ResponseRecorder)
		status int
		code   string
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { pkghttp.WriteBadRequest(w, "m") }, 400, "bad_request"},
		{"unauthorized", func(w *httptest.ResponseRecorder) { pkghttp.WriteUnauthorized(w, "m") }, 401, "unauthorized"},
		{"too many", func(w *httptest.ResponseRecorder) { pkghttp.WriteTooManyRequests(w, "m") }, 429, "rate_limit_exceeded"},
		{"internal", func(w *httptest.ResponseRecorder) { pkghttp.WriteInternalError(w, "m") }, 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			var resp pkghttp.ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}
