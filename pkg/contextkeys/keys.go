package contextkeys

type contextKey string

const (
	UserIDKey    contextKey = "UserID"
	ClaimsKey    contextKey = "IdentityClaims"
	TokenKey     contextKey = "AccessToken"
	RequestIDKey contextKey = "RequestID"
)
