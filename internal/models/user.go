// Package models contains data structures for the application's domain records.
package models

// User represents a registered account. Timestamps are unix seconds,
// matching the on-disk JSON layout.
type User struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	PasswordHash    string `json:"password_hash"`
	DisplayName     string `json:"display_name"`
	InstagramHandle string `json:"instagram_handle"`
	TelegramHandle  string `json:"telegram_handle"`
	CreatedAt       int64  `json:"created_at"`
	IsActive        bool   `json:"is_active"`
}

// PublicUser is the externally visible projection of a User. It never
// carries the password hash.
type PublicUser struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	InstagramHandle string `json:"instagram_handle"`
	TelegramHandle  string `json:"telegram_handle"`
	CreatedAt       int64  `json:"created_at"`
}

// PublicView returns the public projection of the user.
func (u *User) PublicView() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		InstagramHandle: u.InstagramHandle,
		TelegramHandle:  u.TelegramHandle,
		CreatedAt:       u.CreatedAt,
	}
}
