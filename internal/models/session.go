package models

import "time"

// Cookie names shared between the core and the HTTP façade.
const (
	SessionCookieName = "matrix_session"
	AnonCookieName    = "matrix_anon_username"
)

// Session is a server-side bearer credential created at login. Expiry is
// checked lazily on read; there is no background sweeper.
type Session struct {
	Token     string `json:"token"`
	UserID    uint   `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
	Expires   int64  `json:"expires"`
}

// Expired reports whether the session lifetime has elapsed at the given instant.
func (s Session) Expired(now time.Time) bool {
	return s.Expires <= now.Unix()
}

// RequestContext carries the credential material the façade extracted
// from an incoming request. Services never touch cookies directly.
type RequestContext struct {
	SessionToken string
	AnonUsername string
}

// Identity is the resolved caller of an operation. User is nil for
// anonymous callers identified only by the anon-username cookie.
type Identity struct {
	User         *User
	AnonUsername string
}

// Authenticated reports whether the identity is backed by a user record.
func (i *Identity) Authenticated() bool {
	return i != nil && i.User != nil
}

// CookieIntent instructs the façade to set (or clear) a cookie. The core
// returns intents instead of writing response headers itself.
type CookieIntent struct {
	Name    string
	Value   string
	Expires time.Time
	Clear   bool
}

// ClearCookieIntent builds an intent that removes the named cookie.
func ClearCookieIntent(name string) CookieIntent {
	return CookieIntent{Name: name, Clear: true, Expires: time.Unix(0, 0)}
}
