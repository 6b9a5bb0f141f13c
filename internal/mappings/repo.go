// Package mappings stores named field-mapping presets so an operator can
// reuse a mapping across sessions instead of rebuilding it per import.
package mappings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"flowdesk/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, p models.MappingPreset) error {
	raw, err := json.Marshal(p.Mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO field_mappings (id, operator_id, collection_id, name, mapping_json)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.OperatorID, p.CollectionID, p.Name, string(raw))
	if err != nil {
		return fmt.Errorf("create mapping preset: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, operatorID, collectionID string) ([]models.MappingPreset, error) {
	query := `
		SELECT id, operator_id, collection_id, name, mapping_json, created_at
		FROM field_mappings
		WHERE operator_id = ?`
	args := []any{operatorID}
	if collectionID != "" {
		query += ` AND collection_id = ?`
		args = append(args, collectionID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mapping presets: %w", err)
	}
	defer rows.Close()

	var presets []models.MappingPreset
	for rows.Next() {
		var (
			p   models.MappingPreset
			raw string
		)
		if err := rows.Scan(&p.ID, &p.OperatorID, &p.CollectionID, &p.Name, &raw, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping preset: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &p.Mapping); err != nil {
			return nil, fmt.Errorf("decode mapping preset %s: %w", p.ID, err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id, operatorID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM field_mappings WHERE id = ? AND operator_id = ?
	`, id, operatorID)
	if err != nil {
		return fmt.Errorf("delete mapping preset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mapping preset rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
