package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"flowdesk/pkg/models"
)

// ParseCSV reads an uploaded delimiter-separated file. The first row is the
// header and becomes the source column set; rows shorter than the header get
// empty strings for the missing columns.
func ParseCSV(data []byte) ([]string, []models.ImportRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, 0, len(header))
	for _, name := range header {
		columns = append(columns, strings.TrimSpace(name))
	}

	var rows []models.ImportRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		if len(rec) == 0 {
			continue
		}

		row := make(models.ImportRow, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			row[col] = v
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// ParseJSON reads an uploaded array of objects. The first object's keys
// become the source column set.
func ParseJSON(data []byte) ([]string, []models.ImportRow, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode json: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}

	columns := make([]string, 0, len(raw[0]))
	for k := range raw[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([]models.ImportRow, 0, len(raw))
	for _, obj := range raw {
		rows = append(rows, models.ImportRow(obj))
	}
	return columns, rows, nil
}

// ParseUpload picks the parser from the uploaded file's name.
func ParseUpload(fileName string, data []byte) ([]string, []models.ImportRow, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".json"):
		return ParseJSON(data)
	case strings.HasSuffix(strings.ToLower(fileName), ".csv"):
		return ParseCSV(data)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s (want .csv or .json)", fileName)
	}
}
