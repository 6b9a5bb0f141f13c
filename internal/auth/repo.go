package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Operator is an account allowed into the admin tool. Operators are few;
// there is no role model beyond "can log in".
type Operator struct {
	ID           string
	Username     string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, op Operator) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO operators (id, username, password_hash)
		VALUES (?, ?, ?)
	`, op.ID, op.Username, op.PasswordHash)
	if err != nil {
		return fmt.Errorf("create operator: %w", err)
	}
	return nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, token_version, created_at
		FROM operators
		WHERE username = ?
	`, strings.TrimSpace(username))
	return scanOperator(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Operator, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, token_version, created_at
		FROM operators
		WHERE id = ?
	`, id)
	return scanOperator(row)
}

func scanOperator(row *sql.Row) (*Operator, error) {
	var op Operator
	if err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &op.TokenVersion, &op.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan operator: %w", err)
	}
	return &op, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token_version FROM operators WHERE id = ?
	`, id)

	var version int
	if err := row.Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("get token version: operator not found")
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

// BumpTokenVersion invalidates every outstanding session token.
func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE operators SET token_version = token_version + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: operator not found")
	}
	return nil
}
