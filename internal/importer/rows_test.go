package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/pkg/models"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Name, Price ,sku\nWidget,9.99,W-1\nGadget,,G-2\nShort\n")

	columns, rows, err := ParseCSV(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Price", "sku"}, columns)
	require.Len(t, rows, 3)

	assert.Equal(t, "Widget", rows[0]["Name"])
	assert.Equal(t, "9.99", rows[0]["Price"])

	// missing trailing fields become empty strings
	assert.Equal(t, "", rows[1]["Price"])
	assert.Equal(t, "", rows[2]["sku"])
}

func TestParseCSVBadHeader(t *testing.T) {
	_, _, err := ParseCSV(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[{"name":"Widget","price":9.99},{"name":"Gadget","price":1}]`)

	columns, rows, err := ParseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "price"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", treat(rows[0]["name"]))
}

func treat(v any) string {
	s, _ := v.(string)
	return s
}

func TestParseJSONNotAnArray(t *testing.T) {
	_, _, err := ParseJSON([]byte(`{"name":"Widget"}`))
	require.Error(t, err)
}

func TestParseUploadPicksByExtension(t *testing.T) {
	_, rows, err := ParseUpload("items.CSV", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, rows, err = ParseUpload("items.json", []byte(`[{"a":"1"}]`))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, _, err = ParseUpload("items.xlsx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestApplyMapping(t *testing.T) {
	rows := []models.ImportRow{
		{"Item ID": "a1", "Product Name": "Widget", "Internal": "x"},
	}
	mapping := models.FieldMapping{
		"Item ID":      "id",
		"Product Name": "name",
		"Internal":     models.SkipColumn,
	}

	mapped := ApplyMapping(rows, mapping)
	require.Len(t, mapped, 1)

	assert.Equal(t, models.ImportRow{"id": "a1", "name": "Widget"}, mapped[0])
}

func TestApplyMappingDropsUnmappedColumns(t *testing.T) {
	rows := []models.ImportRow{{"a": "1", "b": "2"}}
	mapped := ApplyMapping(rows, models.FieldMapping{"a": "alpha"})

	assert.Equal(t, models.ImportRow{"alpha": "1"}, mapped[0])
}

func TestValidateMapping(t *testing.T) {
	col := &models.Collection{Fields: []models.Field{
		{Slug: "name"}, {Slug: "price"},
	}}

	unknown := ValidateMapping(models.FieldMapping{
		"A": "name",
		"B": "id",   // always legal
		"C": "slug", // always legal
		"D": models.SkipColumn,
		"E": "nope",
	}, col)

	assert.Equal(t, []string{"nope"}, unknown)
}

func TestDryRunClassification(t *testing.T) {
	rows := []models.ImportRow{
		{"id": "a1", "title": "X"},
		{"slug": "y", "title": "Y"},
		{"id": "a2", "slug": "z"}, // id wins over slug
		{"title": "Z"},
	}

	result := DryRun(rows)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.WithID)
	assert.Equal(t, 1, result.WithSlug)
	assert.Equal(t, 1, result.Neither)
	assert.Equal(t, result.Total, result.WithID+result.WithSlug+result.Neither)
	assert.Len(t, result.Preview, 4)
}

func TestDryRunPreviewCapped(t *testing.T) {
	rows := make([]models.ImportRow, 12)
	for i := range rows {
		rows[i] = models.ImportRow{"title": "row"}
	}

	result := DryRun(rows)
	assert.Len(t, result.Preview, previewRows)
	assert.Equal(t, 12, result.Neither)
}
