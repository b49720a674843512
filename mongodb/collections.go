package mongodb

// Collection names used by the repositories.
const (
	AuthSessionsCollectionName = "oauth_sessions"
	UsersCollectionName        = "users"
	DevicesCollectionName      = "devices"
	UserTokensCollectionName   = "user_tokens"
)
