package store

import (
	"errors"

	"golang.org/x/oauth2"
)

// ErrUserNotFound is returned by Get when no credentials are stored for the
// given email.
var ErrUserNotFound = errors.New("user not found")

// UserStore maps a user's email to their stored OAuth tokens.
type UserStore interface {
	// Get returns the stored token for email, or ErrUserNotFound.
	Get(email string) (*oauth2.Token, error)
	// Save upserts the token for email.
	Save(email string, token *oauth2.Token) error
}
