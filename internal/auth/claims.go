package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// TaxpayerPIN is the KRA PIN the account is registered under; officer accounts
// carry their staff identifier there. Role-based checks belong to internal/rbac.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string    `json:"user_id"`
	TaxpayerPIN string    `json:"taxpayer_pin"`
	Role        string    `json:"role"`
	TokenType   TokenType `json:"token_type"`
}
