package models

import "time"

// User is the identity returned by the identity provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Aud       string    `json:"aud,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the identity provider's session for a signed-in user.
// Provider tokens never leave the server; clients get an API token instead.
type Session struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
	Demo         bool      `json:"demo"`
}

// StoredSession is the key/value shape of Session. Unlike Session it
// serializes the provider tokens.
type StoredSession struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
	Demo         bool      `json:"demo"`
}

// Stored converts s for persistence.
func (s Session) Stored() StoredSession {
	return StoredSession(s)
}

// Session converts a persisted record back.
func (s StoredSession) Session() Session {
	return Session(s)
}
