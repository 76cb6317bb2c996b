package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "u***@*******.com"},
		{"a@b.io", "a@*.io"},
		{"no-at-sign", "[invalid-email]"},
		{"a@b@c", "[invalid-email]"},
		{"user@localhost", "u***@localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.in))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("email=a@b.c"))
	assert.True(t, SanitizeQueryString("Access_Token=xyz"))
	assert.False(t, SanitizeQueryString("page=2&limit=10"))
	assert.False(t, SanitizeQueryString(""))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestAuditLogger_LogLoginOutcome(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogLoginOutcome(context.Background(), LoginOutcomeEvent{
		Outcome:       "locked",
		MaskedEmail:   SanitizedEmail("user@example.com"),
		SourceAddress: "203.0.113.1",
		Duration:      15 * time.Millisecond,
	})

	entry := decodeLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "locked", entry["outcome"])
	assert.Equal(t, "u***@*******.com", entry["email"])
	assert.Equal(t, "203.0.113.1", entry["ip_address"])
	assert.NotContains(t, entry, "account_id")
	assert.NotContains(t, buf.String(), "user@example.com")
}

func TestAuditLogger_LogLoginOutcome_AuthenticatedIsInfo(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogLoginOutcome(context.Background(), LoginOutcomeEvent{
		Outcome:   "authenticated",
		AccountID: "acc-1",
	})

	entry := decodeLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "acc-1", entry["account_id"])
}

func TestAuditLogger_LogAccountAction(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogAccountAction(context.Background(), "account_registered", "acc-9", "")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "account", entry["audit_type"])
	assert.Equal(t, "account_registered", entry["event_type"])
	assert.NotContains(t, entry, "ip_address")
}
