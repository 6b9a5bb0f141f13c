// Package credentials stores each operator's CMS API token. The token is
// the only secret the tool keeps; everything else lives in the remote CMS.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Credential struct {
	OperatorID string
	APIToken   string
	UpdatedAt  time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Upsert(ctx context.Context, operatorID, token string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO credentials (operator_id, api_token, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(operator_id) DO UPDATE SET
			api_token = excluded.api_token,
			updated_at = CURRENT_TIMESTAMP
	`, operatorID, token)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, operatorID string) (*Credential, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT operator_id, api_token, updated_at
		FROM credentials
		WHERE operator_id = ?
	`, operatorID)

	var cred Credential
	if err := row.Scan(&cred.OperatorID, &cred.APIToken, &cred.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

func (r *Repo) Delete(ctx context.Context, operatorID string) error {
	if _, err := r.DB.ExecContext(ctx, `
		DELETE FROM credentials WHERE operator_id = ?
	`, operatorID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
