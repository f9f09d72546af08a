package store

import (
	"context"
	"fmt"
	"strings"
)

const userColumns = "id, username, email, role, public_key, encrypted_private_key, password_hash, created_at, updated_at"

// normEmail trims and lowercases an email for lookup and storage.
func normEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateUserParams carries everything registration persists. Key material arrives
// pre-encrypted from the client and is stored verbatim; the server never sees the
// private key in the clear.
type CreateUserParams struct {
	Username            string
	Email               string
	PasswordHash        string
	PublicKey           string
	EncryptedPrivateKey string
}

// CreateUser inserts the account row and its player row at the start location in one
// transaction, so a registered user always has a spawn point.
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, public_key, encrypted_private_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		params.Username, normEmail(params.Email), params.PasswordHash,
		params.PublicKey, params.EncryptedPrivateKey)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PublicKey,
		&u.EncryptedPrivateKey, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO players (user_id, current_location_id)
		VALUES ($1, $2)
	`, u.ID, StartLocationID); err != nil {
		return User{}, fmt.Errorf("failed to create player for new user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, fmt.Errorf("failed to commit registration transaction: %w", err)
	}

	return u, nil
}

// GetUserByEmail fetches the account row for login verification.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, normEmail(email))

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PublicKey,
		&u.EncryptedPrivateKey, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}
