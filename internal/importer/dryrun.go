package importer

import "flowdesk/pkg/models"

// previewRows is how many transformed rows a dry run returns verbatim.
const previewRows = 5

// DryRun classifies transformed rows without any remote call. The same keys
// the live run matches on ("id", then "slug") drive the classification, so
// the preview and the run always agree.
func DryRun(rows []models.ImportRow) models.DryRunResult {
	result := models.DryRunResult{Total: len(rows)}

	for _, row := range rows {
		switch {
		case stringField(row, "id") != "":
			result.WithID++
		case stringField(row, "slug") != "":
			result.WithSlug++
		default:
			result.Neither++
		}
	}

	n := previewRows
	if len(rows) < n {
		n = len(rows)
	}
	result.Preview = append(result.Preview, rows[:n]...)

	return result
}
