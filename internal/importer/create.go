package importer

import (
	"context"

	"flowdesk/pkg/models"
)

// CreateAll imports every row as a new item, no matching against existing
// ones. Same per-row error discipline as Reconcile.
func (r *Runner) CreateAll(ctx context.Context, collectionID string, rows []models.ImportRow, live bool) models.ImportResult {
	result := models.ImportResult{Total: len(rows)}

	r.Log.Info().
		Str("collection", collectionID).
		Int("rows", len(rows)).
		Msg("bulk create start")

	for i, row := range rows {
		r.emit("process", "creating items", i, len(rows))

		fields, _ := stripID(row)

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

	r.emit("done", "bulk create finished", len(rows), len(rows))
	r.Log.Info().
		Int("created", result.Created).
		Int("failed", result.Failed()).
		Msg("bulk create done")
	return result
}
