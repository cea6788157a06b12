package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims carried by a session token. TokenID keys
// the Redis allowlist entry; deleting it revokes the session.
type SessionClaims struct {
	AccountID string `json:"accountId"`
	TokenID   string `json:"tokenId"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for account registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the principal shape returned to the front end
type SessionUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     Role    `json:"role"`
	XP       int     `json:"xp"`
	Wallet   float64 `json:"wallet"`
}

// NewSessionUser projects an account onto its session representation
func NewSessionUser(a *Account) SessionUser {
	return SessionUser{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
		XP:       a.XP,
		Wallet:   a.Wallet,
	}
}
