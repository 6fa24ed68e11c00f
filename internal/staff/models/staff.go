package models

import (
	"strings"
	"time"

	id "mandate/pkg/domain"
)

// Account is a staff member allowed to review mandates.
type Account struct {
	ID           id.StaffID `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         id.Role    `json:"role"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (a Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CreateInput is what a super admin supplies to open an account.
type CreateInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      id.Role
	Password  string
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Account     Account   `json:"account"`
}
