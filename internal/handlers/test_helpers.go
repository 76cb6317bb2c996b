package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/credguard/internal/auth"
	"github.com/BradenHooton/credguard/internal/models"
	pkghttp "github.com/BradenHooton/credguard/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithPrincipal adds access token claims to the request context for testing authenticated endpoints
func WithPrincipal(req *http.Request, accountID string) *http.Request {
	claims := &models.TokenClaims{
		Type:      "access",
		AccountID: accountID,
	}
	ctx := context.WithValue(req.Context(), auth.PrincipalContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockLoginGuard implements LoginGuardInterface for testing
type MockLoginGuard struct {
	AuthenticateFunc func(ctx context.Context, email, password, sourceAddress, clientDescriptor string) (*models.AuthResult, error)
}

func (m *MockLoginGuard) Authenticate(ctx context.Context, email, password, sourceAddress, clientDescriptor string) (*models.AuthResult, error) {
	if m.AuthenticateFunc == nil {
		return models.Rejected(), nil
	}
	return m.AuthenticateFunc(ctx, email, password, sourceAddress, clientDescriptor)
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	RegisterFunc     func(ctx context.Context, email, password, sourceAddress string) (*models.Account, error)
	LoginHistoryFunc func(ctx context.Context, accountID string) ([]*models.LoginEvent, error)
}

func (m *MockAccountService) Register(ctx context.Context, email, password, sourceAddress string) (*models.Account, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, email, password, sourceAddress)
}

func (m *MockAccountService) LoginHistory(ctx context.Context, accountID string) ([]*models.LoginEvent, error) {
	if m.LoginHistoryFunc == nil {
		return []*models.LoginEvent{}, nil
	}
	return m.LoginHistoryFunc(ctx, accountID)
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateAccessTokenFunc func(accountID, email string) (string, error)
}

func (m *MockTokenIssuer) GenerateAccessToken(accountID, email string) (string, error) {
	if m.GenerateAccessTokenFunc == nil {
		return "token-" + accountID, nil
	}
	return m.GenerateAccessTokenFunc(accountID, email)
}
