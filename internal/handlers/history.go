package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/credguard/internal/auth"
	pkghttp "github.com/BradenHooton/credguard/pkg/http"
)

// LoginEventResponse is one entry of the login history
type LoginEventResponse struct {
	ID               string `json:"id"`
	OccurredAt       string `json:"occurred_at"`
	SourceAddress    string `json:"source_address"`
	ClientDescriptor string `json:"client_descriptor"`
}

// LoginHistoryResponse wraps the most recent login events, newest first
type LoginHistoryResponse struct {
	Events []LoginEventResponse `json:"events"`
}

// LoginHistory handles GET /login-history for the authenticated principal
func (h *AuthHandler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.PrincipalFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	events, err := h.accounts.LoginHistory(r.Context(), claims.AccountID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load login history",
			slog.String("account_id", claims.AccountID),
			slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := LoginHistoryResponse{Events: make([]LoginEventResponse, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, LoginEventResponse{
			ID:               ev.ID.String(),
			OccurredAt:       ev.OccurredAt.UTC().Format(time.RFC3339),
			SourceAddress:    ev.SourceAddress,
			ClientDescriptor: ev.ClientDescriptor,
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
