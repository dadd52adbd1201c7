package auth

// Credential holds the login material for one user. One row per user;
// never hard-deleted.
type Credential struct {
	UserID       int64
	Username     string
	PasswordHash string
	PasswordSalt string
}

// TokenResult is what a successful login returns to the client.
type TokenResult struct {
	AccessToken string   `json:"access_token"`
	Actions     []string `json:"actions"`
}
