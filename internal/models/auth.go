package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims identifies the session principal carried in an access token.
type TokenClaims struct {
	Type      string `json:"type"`
	AccountID string `json:"account_id"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
