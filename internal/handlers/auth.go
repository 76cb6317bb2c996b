package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/credguard/internal/auth"
	"github.com/BradenHooton/credguard/internal/models"
	pkgauth "github.com/BradenHooton/credguard/pkg/auth"
	pkghttp "github.com/BradenHooton/credguard/pkg/http"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgTooManyAttempts    = "Too many login attempts"
	msgAccountLocked      = "Account temporarily locked"
	msgRegistrationAck    = "Registration received. If the email is not already registered, the account is now active."
)

// LoginGuardInterface decides login attempts
type LoginGuardInterface interface {
	Authenticate(ctx context.Context, email, password, sourceAddress, clientDescriptor string) (*models.AuthResult, error)
}

// AccountServiceInterface defines signup and history operations
type AccountServiceInterface interface {
	Register(ctx context.Context, email, password, sourceAddress string) (*models.Account, error)
	LoginHistory(ctx context.Context, accountID string) ([]*models.LoginEvent, error)
}

// TokenIssuer issues session tokens for authenticated accounts
type TokenIssuer interface {
	GenerateAccessToken(accountID, email string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	guard             LoginGuardInterface
	accounts          AccountServiceInterface
	tokens            TokenIssuer
	timing            *auth.TimingDelay
	ipConfig          *pkghttp.IPConfig
	discloseLockState bool
	logger            *slog.Logger
}

// AuthHandlerConfig carries the optional collaborators of AuthHandler
type AuthHandlerConfig struct {
	Timing            *auth.TimingDelay
	IPConfig          *pkghttp.IPConfig
	DiscloseLockState bool
	Logger            *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(guard LoginGuardInterface, accounts AccountServiceInterface, tokens TokenIssuer, cfg AuthHandlerConfig) *AuthHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		guard:             guard,
		accounts:          accounts,
		tokens:            tokens,
		timing:            cfg.Timing,
		ipConfig:          cfg.IPConfig,
		discloseLockState: cfg.DiscloseLockState,
		logger:            logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	AccountID   string `json:"account_id"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req LoginRequest

	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	// Input errors look exactly like wrong credentials
	if err := ValidateRequest(req); err != nil {
		h.pad(r.Context(), start, false)
		pkghttp.WriteUnauthorized(w, msgInvalidCredentials)
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := pkghttp.ClientDescriptor(r)

	result, err := h.guard.Authenticate(r.Context(), req.Email, req.Password, ipAddress, userAgent)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	switch result.Outcome {
	case models.OutcomeAuthenticated:
		token, err := h.tokens.GenerateAccessToken(result.AccountID, result.Email)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to issue access token",
				slog.String("account_id", result.AccountID),
				slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
		h.pad(r.Context(), start, true)
		pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			AccountID:   result.AccountID,
		})

	case models.OutcomeThrottled:
		h.pad(r.Context(), start, false)
		h.writeBlocked(w, msgTooManyAttempts)

	case models.OutcomeLocked:
		h.pad(r.Context(), start, false)
		h.writeBlocked(w, msgAccountLocked)

	default:
		h.pad(r.Context(), start, false)
		pkghttp.WriteUnauthorized(w, msgInvalidCredentials)
	}
}

// writeBlocked reports a throttled or locked attempt according to the disclosure policy.
func (h *AuthHandler) writeBlocked(w http.ResponseWriter, message string) {
	if h.discloseLockState {
		pkghttp.WriteTooManyRequests(w, message)
		return
	}
	pkghttp.WriteUnauthorized(w, msgInvalidCredentials)
}

func (h *AuthHandler) pad(ctx context.Context, start time.Time, success bool) {
	if h.timing != nil {
		h.timing.WaitFrom(ctx, start, success)
	}
}

// Register handles POST /auth/register. New and already-registered emails get
// the same 202 response.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	_, err := h.accounts.Register(r.Context(), req.Email, req.Password, ipAddress)
	if err != nil {
		var pwErr *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrConflict):
			// fall through to the uniform acknowledgement
		case errors.As(err, &pwErr):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
			return
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid email address")
			return
		default:
			h.logger.ErrorContext(r.Context(), "registration failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, MessageResponse{Message: msgRegistrationAck})
}
