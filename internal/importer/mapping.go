package importer

import (
	"strings"

	"flowdesk/pkg/models"
)

// ApplyMapping transforms source rows into field-slug-keyed rows. Columns
// mapped to models.SkipColumn (or left out of the mapping) are dropped.
// Mapping onto "id" or "slug" is what later drives upsert matching.
func ApplyMapping(rows []models.ImportRow, mapping models.FieldMapping) []models.ImportRow {
	out := make([]models.ImportRow, 0, len(rows))
	for _, row := range rows {
		mapped := make(models.ImportRow, len(mapping))
		for src, val := range row {
			target, ok := mapping[src]
			if !ok || target == "" || target == models.SkipColumn {
				continue
			}
			mapped[target] = val
		}
		out = append(out, mapped)
	}
	return out
}

// ValidateMapping rejects mappings that point at field slugs the collection
// doesn't have. "id" and "slug" are always legal targets.
func ValidateMapping(mapping models.FieldMapping, col *models.Collection) []string {
	known := map[string]bool{"id": true, "slug": true}
	for _, f := range col.Fields {
		known[f.Slug] = true
	}

	var unknown []string
	for _, target := range mapping {
		target = strings.TrimSpace(target)
		if target == "" || target == models.SkipColumn {
			continue
		}
		if !known[target] {
			unknown = append(unknown, target)
		}
	}
	return unknown
}
