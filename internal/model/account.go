package model

import "time"

// Role separates regular users from administrators
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a registered user. XP and Wallet only grow through answer
// verification; the password hash never leaves the server.
type Account struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         Role      `json:"role" bson:"role"`
	XP           int       `json:"xp" bson:"xp"`
	Wallet       float64   `json:"wallet" bson:"wallet"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
