package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users and their credentials. Read methods run on the
// pool; write methods take the caller's transaction so the mutation, the
// credential row and the audit event commit together.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Insert(ctx context.Context, tx pgx.Tx, u *User) error
	Update(ctx context.Context, tx pgx.Tx, u *User) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
	InsertCredential(ctx context.Context, tx pgx.Tx, userID int64, username, hash, salt string) error
	UpdateCredential(ctx context.Context, tx pgx.Tx, userID int64, username string, hash, salt *string) error
	RoleIDByName(ctx context.Context, tx pgx.Tx, name string) (int64, bool, error)
	AssignRole(ctx context.Context, tx pgx.Tx, userID, roleID int64) error
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, first_name, last_name, email, handle, created_at, updated_at, deleted_at`

func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Handle, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Handle, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: get %d: %w", id, err)
	}
	return u, nil
}

func (r *PGRepository) Insert(ctx context.Context, tx pgx.Tx, u *User) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, handle)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		u.FirstName, u.LastName, u.Email, u.Handle).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, tx pgx.Tx, u *User) error {
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, handle = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Handle).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("users: update %d: %w", u.ID, err)
	}
	return nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("users: delete %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepository) InsertCredential(ctx context.Context, tx pgx.Tx, userID int64, username, hash, salt string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_credentials (user_id, username, password_hash, password_salt)
		VALUES ($1, $2, $3, $4)`,
		userID, username, hash, salt)
	if err != nil {
		return fmt.Errorf("users: insert credential: %w", err)
	}
	return nil
}

// UpdateCredential rotates the username and, when hash is non-nil, the
// password hash and salt.
func (r *PGRepository) UpdateCredential(ctx context.Context, tx pgx.Tx, userID int64, username string, hash, salt *string) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_credentials
		SET username = $2,
		    password_hash = COALESCE($3, password_hash),
		    password_salt = COALESCE($4, password_salt)
		WHERE user_id = $1`,
		userID, username, hash, salt)
	if err != nil {
		return fmt.Errorf("users: update credential: %w", err)
	}
	return nil
}

func (r *PGRepository) RoleIDByName(ctx context.Context, tx pgx.Tx, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("users: role lookup %q: %w", name, err)
	}
	return id, true, nil
}

func (r *PGRepository) AssignRole(ctx context.Context, tx pgx.Tx, userID, roleID int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_to_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		userID, roleID)
	if err != nil {
		return fmt.Errorf("users: assign role: %w", err)
	}
	return nil
}
