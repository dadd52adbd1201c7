package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords. The single message resists username enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialStore looks up login credentials.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*Credential, error)
}

// Resolver resolves the permitted-action set for a user.
type Resolver interface {
	ResolveActions(ctx context.Context, userID int64) ([]string, error)
}

// Service authenticates credentials and mints bearer tokens.
type Service struct {
	credentials CredentialStore
	resolver    Resolver
	codec       *TokenCodec
	hooks       []Hooks
}

// NewService constructs the authenticator.
func NewService(credentials CredentialStore, resolver Resolver, codec *TokenCodec, hooks ...Hooks) *Service {
	return &Service{credentials: credentials, resolver: resolver, codec: codec, hooks: hooks}
}

// IssueToken verifies the username/password pair and returns a signed token
// embedding the user's permitted actions as resolved right now. The embedded
// list is a snapshot; it does not refresh if the permission graph changes
// later. Login is read-only and emits no audit event.
func (s *Service) IssueToken(ctx context.Context, username, password string) (TokenResult, error) {
	credential, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return TokenResult{}, ErrInvalidCredentials
		}
		return TokenResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return TokenResult{}, ErrInvalidCredentials
	}
	actions, err := s.resolver.ResolveActions(ctx, credential.UserID)
	if err != nil {
		return TokenResult{}, err
	}
	token, err := s.codec.Encode(credential.Username, credential.UserID, actions)
	if err != nil {
		return TokenResult{}, err
	}
	for _, h := range s.hooks {
		h.TokenIssued()
	}
	return TokenResult{AccessToken: token, Actions: actions}, nil
}
