package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCredentialNotFound indicates no credential row exists for the username.
var ErrCredentialNotFound = errors.New("auth: credential not found")

// PGCredentialStore implements CredentialStore using PostgreSQL.
type PGCredentialStore struct {
	pool *pgxpool.Pool
}

// NewCredentialStore constructs a PostgreSQL credential store.
func NewCredentialStore(pool *pgxpool.Pool) *PGCredentialStore {
	return &PGCredentialStore{pool: pool}
}

// FindByUsername fetches the credential row for a username.
func (s *PGCredentialStore) FindByUsername(ctx context.Context, username string) (*Credential, error) {
	const query = `SELECT user_id, username, password_hash, password_salt FROM user_credentials WHERE username = $1`
	var credential Credential
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&credential.UserID,
		&credential.Username,
		&credential.PasswordHash,
		&credential.PasswordSalt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("auth: find credential: %w", err)
	}
	return &credential, nil
}

var _ CredentialStore = (*PGCredentialStore)(nil)
