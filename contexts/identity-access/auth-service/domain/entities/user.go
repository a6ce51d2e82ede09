package entities

import "time"

// User is an account record. PasswordHash never leaves the module.
type User struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
