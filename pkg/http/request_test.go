package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/BradenHooton/credguard/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP_DirectConnection_IgnoresHeaders(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	// Spoofed forwarding headers from an untrusted peer
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.Header.Set("X-Real-IP", "192.168.1.1")

	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"}}

	assert.Equal(t, "203.0.113.10", pkghttp.ExtractClientIP(req, config))
}

func TestExtractClientIP_TrustedProxy_UsesXForwardedFor(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Forwarded-For", "203.0.113.42, 10.0.0.5")

	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	assert.Equal(t, "203.0.113.42", pkghttp.ExtractClientIP(req, config))
}

func TestExtractClientIP_TrustedProxy_FallsBackToXRealIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Forwarded-For", "garbage")
	req.Header.Set("X-Real-IP", "198.51.100.9")

	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	assert.Equal(t, "198.51.100.9", pkghttp.ExtractClientIP(req, config))
}

func TestExtractClientIP_NilConfig(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "2001:db8::1", pkghttp.ExtractClientIP(req, nil))
}

func TestExtractClientIP_EmptyRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = ""

	assert.Equal(t, "unknown", pkghttp.ExtractClientIP(req, nil))
}

func TestClientDescriptor(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	assert.Equal(t, "unknown", pkghttp.ClientDescriptor(req))

	req.Header.Set("User-Agent", "  Mozilla/5.0  ")
	assert.Equal(t, "Mozilla/5.0", pkghttp.ClientDescriptor(req))

	req.Header.Set("User-Agent", strings.Repeat("a", 2000))
	assert.Len(t, pkghttp.ClientDescriptor(req), 512)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c","admin":true}`))
	err := pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst)
	assert.Error(t, err)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "a@b.c", dst.Email)
}
