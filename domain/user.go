package domain

import "time"

// User represents an account created from a GitHub identity. GithubUID is the
// stable external key; profile fields are refreshed on every sign-in.
type User struct {
	ID          string     `bson:"_id" json:"id"`
	GithubUID   string     `bson:"github_uid" json:"github_uid"`
	Username    string     `bson:"username" json:"username"`
	AvatarURL   string     `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// UserInfo is the subset of a user returned to clients alongside a token.
type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Info returns the client-facing view of the user.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}
