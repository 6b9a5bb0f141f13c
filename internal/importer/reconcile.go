// Package importer turns parsed upload rows into CMS items: mapping,
// dry-run classification, and the batch create/upsert loops.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"flowdesk/pkg/models"
)

// ItemStore is the slice of the CMS API the import loops need. The webflow
// client satisfies it; tests use an in-memory fake.
type ItemStore interface {
	ListItems(ctx context.Context, collectionID string, limit, offset int) ([]models.Item, error)
	CreateItem(ctx context.Context, collectionID string, fields map[string]any, live bool) (*models.Item, error)
	UpdateItem(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (*models.Item, error)
	PageSize() int
}

// Event is one progress tick of a run. Consumed live, never persisted.
type Event struct {
	RunID   string    `json:"run_id"`
	Phase   string    `json:"phase"` // "fetch", "process", "done"
	Message string    `json:"message"`
	Current int       `json:"current"`
	Total   int       `json:"total"`
	At      time.Time `json:"at"`
}

// ProgressFunc receives run events. May be nil.
type ProgressFunc func(Event)

// Runner executes import runs against a store. One run at a time; the
// store's own rate limiter paces the remote calls.
type Runner struct {
	Store    ItemStore
	Log      zerolog.Logger
	Progress ProgressFunc
	RunID    string
}

func (r *Runner) emit(phase, message string, current, total int) {
	if r.Progress == nil {
		return
	}
	r.Progress(Event{
		RunID:   r.RunID,
		Phase:   phase,
		Message: message,
		Current: current,
		Total:   total,
		At:      time.Now().UTC(),
	})
}

// fetchExisting pages through the collection until a short page signals the
// end, building the two lookups the upsert decision needs.
func (r *Runner) fetchExisting(ctx context.Context, collectionID string) (byID map[string]struct{}, slugToID map[string]string, err error) {
	byID = make(map[string]struct{})
	slugToID = make(map[string]string)

	limit := r.Store.PageSize()
	if limit <= 0 {
		limit = 100
	}

	for offset := 0; ; offset += limit {
		r.emit("fetch", "listing existing items", len(byID), 0)

		page, err := r.Store.ListItems(ctx, collectionID, limit, offset)
		if err != nil {
			return nil, nil, fmt.Errorf("list existing items at offset %d: %w", offset, err)
		}

		for _, item := range page {
			byID[item.ID] = struct{}{}
			if slug := item.Slug(); slug != "" {
				slugToID[slug] = item.ID
			}
		}

		if len(page) < limit {
			break
		}
	}
	return byID, slugToID, nil
}

// Reconcile upserts rows into the collection. Rows carrying an id that
// matches an existing item, or a slug that matches an existing item's slug,
// become updates; everything else becomes a create. A failed row is recorded
// with its input index and the loop moves on.
func (r *Runner) Reconcile(ctx context.Context, collectionID string, rows []models.ImportRow, live bool) (models.ImportResult, error) {
	result := models.ImportResult{Total: len(rows)}

	byID, slugToID, err := r.fetchExisting(ctx, collectionID)
	if err != nil {
		return result, err
	}
	r.Log.Info().
		Str("collection", collectionID).
		Int("existing", len(byID)).
		Int("rows", len(rows)).
		Msg("reconcile start")

	for i, row := range rows {
		r.emit("process", "importing rows", i, len(rows))

		fields, rowID := stripID(row)

		targetID := ""
		if rowID != "" {
			if _, ok := byID[rowID]; ok {
				targetID = rowID
			}
		}
		if targetID == "" {
			if slug := stringField(row, "slug"); slug != "" {
				targetID = slugToID[slug]
			}
		}

		if targetID != "" {
			item, err := r.Store.UpdateItem(ctx, collectionID, targetID, fields, live)
			if err != nil {
				result.Errors = append(result.Errors, models.RowError{Index: i, Message: err.Error()})
				continue
			}
			result.Updated++
			result.Outcomes = append(result.Outcomes, models.RowOutcome{
				Index:  i,
				Action: models.ActionUpdated,
				ItemID: item.ID,
			})
			continue
		}

		item, err := r.Store.CreateItem(ctx, collectionID, fields, live)
		if err != nil {
			result.Errors = append(result.Errors, models.RowError{Index: i, Message: err.Error()})
			continue
		}
		result.Created++
		result.Outcomes = append(result.Outcomes, models.RowOutcome{
			Index:  i,
			Action: models.ActionCreated,
			ItemID: item.ID,
		})
	}

	r.emit("done", "import finished", len(rows), len(rows))
	r.Log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed()).
		Msg("reconcile done")
	return result, nil
}

// stripID returns the row's fields without the reserved id key, plus the id
// value itself when present.
func stripID(row models.ImportRow) (map[string]any, string) {
	fields := make(map[string]any, len(row))
	for k, v := range row {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	return fields, stringField(row, "id")
}

func stringField(row models.ImportRow, key string) string {
	s, _ := row[key].(string)
	return s
}
