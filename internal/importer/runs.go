package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"flowdesk/pkg/models"
)

// RunRepo persists finished import runs so operators can review failures
// after the fact.
type RunRepo struct {
	DB *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{DB: db}
}

func (r *RunRepo) Insert(ctx context.Context, run models.ImportRun) error {
	errs, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("encode run errors: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO import_runs
			(id, operator_id, collection_id, mode, live, total, created, updated, failed, errors_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.OperatorID, run.CollectionID, run.Mode, run.Live,
		run.Total, run.Created, run.Updated, run.Failed, string(errs),
		run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func (r *RunRepo) List(ctx context.Context, operatorID string, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, operator_id, collection_id, mode, live, total, created, updated, failed, errors_json, started_at, finished_at
		FROM import_runs
		WHERE operator_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, operatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepo) Get(ctx context.Context, id, operatorID string) (*models.ImportRun, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, operator_id, collection_id, mode, live, total, created, updated, failed, errors_json, started_at, finished_at
		FROM import_runs
		WHERE id = ? AND operator_id = ?
	`, id, operatorID)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get import run: %w", err)
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.ImportRun, error) {
	var (
		run     models.ImportRun
		errsRaw string
	)
	if err := s.Scan(
		&run.ID, &run.OperatorID, &run.CollectionID, &run.Mode, &run.Live,
		&run.Total, &run.Created, &run.Updated, &run.Failed, &errsRaw,
		&run.StartedAt, &run.FinishedAt,
	); err != nil {
		return run, err
	}
	if errsRaw != "" {
		if err := json.Unmarshal([]byte(errsRaw), &run.Errors); err != nil {
			return run, fmt.Errorf("decode run errors: %w", err)
		}
	}
	return run, nil
}
