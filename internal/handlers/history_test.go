package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/credguard/internal/handlers"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHistory_RequiresPrincipal(t *testing.T) {
	h := handlers.NewAuthHandler(&handlers.MockLoginGuard{}, &handlers.MockAccountService{}, &handlers.MockTokenIssuer{}, handlers.AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.LoginHistory(w, httptest.NewRequest("GET", "/login-history", nil))

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestLoginHistory_ReturnsEvents(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	id := uuid.New()
	var gotAccount string

	accounts := &handlers.MockAccountService{
		LoginHistoryFunc: func(ctx context.Context, accountID string) ([]*models.LoginEvent, error) {
			gotAccount = accountID
			return []*models.LoginEvent{{
				ID:               id,
				AccountID:        accountID,
				OccurredAt:       at,
				SourceAddress:    "203.0.113.9",
				ClientDescriptor: "Mozilla/5.0",
			}}, nil
		},
	}
	h := handlers.NewAuthHandler(&handlers.MockLoginGuard{}, accounts, &handlers.MockTokenIssuer{}, handlers.AuthHandlerConfig{})

	req := handlers.WithPrincipal(httptest.NewRequest("GET", "/login-history", nil), "acc-7")
	w := httptest.NewRecorder()
	h.LoginHistory(w, req)

	var resp handlers.LoginHistoryResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "acc-7", gotAccount)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, id.String(), resp.Events[0].ID)
	assert.Equal(t, "2024-05-06T07:08:09Z", resp.Events[0].OccurredAt)
	assert.Equal(t, "203.0.113.9", resp.Events[0].SourceAddress)
	assert.Equal(t, "Mozilla/5.0", resp.Events[0].ClientDescriptor)
}

func TestLoginHistory_EmptyIsArray(t *testing.T) {
	h := handlers.NewAuthHandler(&handlers.MockLoginGuard{}, &handlers.MockAccountService{}, &handlers.MockTokenIssuer{}, handlers.AuthHandlerConfig{})

	req := handlers.WithPrincipal(httptest.NewRequest("GET", "/login-history", nil), "acc-7")
	w := httptest.NewRecorder()
	h.LoginHistory(w, req)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"events":[]}`, w.Body.String())
}

func TestLoginHistory_StorageFailure(t *testing.T) {
	accounts := &handlers.MockAccountService{
		LoginHistoryFunc: func(ctx context.Context, accountID string) ([]*models.LoginEvent, error) {
			return nil, errors.New("timeout")
		},
	}
	h := handlers.NewAuthHandler(&handlers.MockLoginGuard{}, accounts, &handlers.MockTokenIssuer{}, handlers.AuthHandlerConfig{})

	req := handlers.WithPrincipal(httptest.NewRequest("GET", "/login-history", nil), "acc-7")
	w := httptest.NewRecorder()
	h.LoginHistory(w, req)

	handlers.AssertErrorResponse(t, w, 500, "internal_error")
}

type stubPinger struct{ err error }

func (p stubPinger) HealthCheck(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(stubPinger{})(w, httptest.NewRequest("GET", "/health", nil))
	var ok handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, 200, &ok)
	assert.Equal(t, "healthy", ok.Status)

	w = httptest.NewRecorder()
	handlers.Health(stubPinger{err: errors.New("down")})(w, httptest.NewRequest("GET", "/health", nil))
	var down handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, 503, &down)
	assert.Equal(t, "down", down.Database)
}
