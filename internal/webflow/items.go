package webflow

import (
	"context"
	"fmt"
	"net/http"

	"flowdesk/pkg/models"
)

type itemJSON struct {
	ID        string         `json:"id"`
	IsDraft   bool           `json:"isDraft"`
	FieldData map[string]any `json:"fieldData"`
}

func (it itemJSON) toModel() models.Item {
	fd := it.FieldData
	if fd == nil {
		fd = map[string]any{}
	}
	return models.Item{ID: it.ID, IsDraft: it.IsDraft, FieldData: fd}
}

// ListItems fetches one page of a collection's items. The caller pages by
// offset until a short page comes back.
func (c *Client) ListItems(ctx context.Context, collectionID string, limit, offset int) ([]models.Item, error) {
	var resp struct {
		Items []itemJSON `json:"items"`
	}
	path := fmt.Sprintf("/collections/%s/items?limit=%d&offset=%d", collectionID, limit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, it.toModel())
	}
	return items, nil
}

type itemPayload struct {
	FieldData map[string]any `json:"fieldData"`
}

// CreateItem adds an item. With live set the item is published immediately,
// otherwise it stays a draft.
func (c *Client) CreateItem(ctx context.Context, collectionID string, fields map[string]any, live bool) (*models.Item, error) {
	path := fmt.Sprintf("/collections/%s/items", collectionID)
	if live {
		path += "/live"
	}

	var resp itemJSON
	if err := c.do(ctx, http.MethodPost, path, itemPayload{FieldData: fields}, &resp); err != nil {
		return nil, err
	}
	item := resp.toModel()
	return &item, nil
}

// UpdateItem patches an existing item's fields.
func (c *Client) UpdateItem(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (*models.Item, error) {
	path := fmt.Sprintf("/collections/%s/items/%s", collectionID, itemID)
	if live {
		path += "/live"
	}

	var resp itemJSON
	if err := c.do(ctx, http.MethodPatch, path, itemPayload{FieldData: fields}, &resp); err != nil {
		return nil, err
	}
	item := resp.toModel()
	return &item, nil
}
