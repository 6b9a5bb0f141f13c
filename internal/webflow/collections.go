package webflow

import (
	"context"
	"fmt"
	"net/http"

	"flowdesk/pkg/models"
)

type siteJSON struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName"`
}

type collectionJSON struct {
	ID           string      `json:"id"`
	DisplayName  string      `json:"displayName"`
	Slug         string      `json:"slug"`
	SingularName string      `json:"singularName"`
	Fields       []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	IsRequired  bool   `json:"isRequired"`
}

// Sites lists the sites the token can reach.
func (c *Client) Sites(ctx context.Context) ([]models.Site, error) {
	var resp struct {
		Sites []siteJSON `json:"sites"`
	}
	if err := c.do(ctx, http.MethodGet, "/sites", nil, &resp); err != nil {
		return nil, err
	}

	sites := make([]models.Site, 0, len(resp.Sites))
	for _, s := range resp.Sites {
		sites = append(sites, models.Site{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			ShortName:   s.ShortName,
		})
	}
	return sites, nil
}

// Collections lists a site's collections without field schemas.
func (c *Client) Collections(ctx context.Context, siteID string) ([]models.Collection, error) {
	var resp struct {
		Collections []collectionJSON `json:"collections"`
	}
	path := fmt.Sprintf("/sites/%s/collections", siteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	cols := make([]models.Collection, 0, len(resp.Collections))
	for _, col := range resp.Collections {
		cols = append(cols, toCollection(col))
	}
	return cols, nil
}

// Collection fetches one collection with its full field schema.
func (c *Client) Collection(ctx context.Context, collectionID string) (*models.Collection, error) {
	var resp collectionJSON
	path := fmt.Sprintf("/collections/%s", collectionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	col := toCollection(resp)
	return &col, nil
}

func toCollection(in collectionJSON) models.Collection {
	out := models.Collection{
		ID:           in.ID,
		DisplayName:  in.DisplayName,
		Slug:         in.Slug,
		SingularName: in.SingularName,
	}
	for _, f := range in.Fields {
		out.Fields = append(out.Fields, models.Field{
			ID:          f.ID,
			Slug:        f.Slug,
			DisplayName: f.DisplayName,
			Type:        f.Type,
			Required:    f.IsRequired,
		})
	}
	return out
}
