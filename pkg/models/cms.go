package models

// Collection is the schema of one remote CMS collection, as returned by the
// Webflow API. Fields describe what the import UI can map onto.
type Collection struct {
	ID           string  `json:"id"`
	DisplayName  string  `json:"display_name"`
	Slug         string  `json:"slug"`
	SingularName string  `json:"singular_name,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
}

type Field struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // "PlainText", "RichText", "Number", "ImageRef", ...
	Required    bool   `json:"required"`
}

// Item is one record in a remote collection. FieldData is keyed by field
// slug; the reserved "slug" key acts as the item's natural key when the
// identifier is unknown.
type Item struct {
	ID        string         `json:"id"`
	IsDraft   bool           `json:"is_draft,omitempty"`
	FieldData map[string]any `json:"field_data"`
}

// Slug returns the item's slug field, or "" when absent or not a string.
func (it Item) Slug() string {
	s, _ := it.FieldData["slug"].(string)
	return s
}

// Site is a Webflow site the stored token can reach.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ShortName   string `json:"short_name,omitempty"`
}

// Asset is the metadata record of an uploaded file in the site's asset
// library.
type Asset struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type,omitempty"`
	HostedURL   string `json:"hosted_url,omitempty"`
	FileName    string `json:"file_name"`
}
