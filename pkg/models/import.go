package models

import "time"

// ImportRow is one parsed record from an uploaded file, keyed by source
// column name. Transient: rows exist only for the duration of one run.
type ImportRow map[string]any

// FieldMapping maps source column names to destination field slugs.
// The reserved target SkipColumn drops the column entirely. Targets "id"
// and "slug" feed the reconciler's matching keys.
type FieldMapping map[string]string

// SkipColumn is the mapping target for columns the operator doesn't want.
const SkipColumn = "-"

// Actions recorded per row by an import run.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// RowOutcome is one successfully processed row.
type RowOutcome struct {
	Index  int    `json:"index"` // position in the uploaded file
	Action string `json:"action"`
	ItemID string `json:"item_id"`
}

// RowError is one failed row. The run keeps going past it.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportResult aggregates one run. Created+Updated+len(Errors) == Total.
type ImportResult struct {
	Total    int          `json:"total"`
	Created  int          `json:"created"`
	Updated  int          `json:"updated"`
	Outcomes []RowOutcome `json:"outcomes"`
	Errors   []RowError   `json:"errors"`
}

// Failed is the number of rows that did not reach the remote CMS.
func (r ImportResult) Failed() int { return len(r.Errors) }

// DryRunResult classifies rows without touching the remote CMS.
type DryRunResult struct {
	Total    int         `json:"total"`
	WithID   int         `json:"with_id"`
	WithSlug int         `json:"with_slug"` // slug but no id
	Neither  int         `json:"neither"`
	Preview  []ImportRow `json:"preview"`
}

// ImportRun is the persisted record of one completed run.
type ImportRun struct {
	ID           string     `json:"id"`
	OperatorID   string     `json:"operator_id"`
	CollectionID string     `json:"collection_id"`
	Mode         string     `json:"mode"` // "upsert" or "create"
	Live         bool       `json:"live"`
	Total        int        `json:"total"`
	Created      int        `json:"created"`
	Updated      int        `json:"updated"`
	Failed       int        `json:"failed"`
	Errors       []RowError `json:"errors,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
}

// MappingPreset is a saved, named field mapping for a collection.
type MappingPreset struct {
	ID           string       `json:"id"`
	OperatorID   string       `json:"operator_id"`
	CollectionID string       `json:"collection_id"`
	Name         string       `json:"name"`
	Mapping      FieldMapping `json:"mapping"`
	CreatedAt    time.Time    `json:"created_at"`
}
