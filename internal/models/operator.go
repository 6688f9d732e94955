package models

import "time"

type Operator struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // don’t expose hash
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}
