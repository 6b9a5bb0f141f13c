package webflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/pkg/utils"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := utils.CMSConfig{
		BaseURL:      srv.URL,
		PageSize:     100,
		RateInterval: time.Millisecond, // keep tests fast
	}
	return NewClient("tok-123", cfg, zerolog.Nop()), srv
}

func TestValidateToken(t *testing.T) {
	assert.Error(t, ValidateToken(""))
	assert.Error(t, ValidateToken("   "))
	assert.Error(t, ValidateToken("has space"))
	assert.NoError(t, ValidateToken("abc123"))
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.VerifyToken(context.Background()))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestListItemsPagination(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/col-1/items", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))

		_, _ = w.Write([]byte(`{"items":[
			{"id":"it-1","isDraft":true,"fieldData":{"slug":"one","name":"One"}},
			{"id":"it-2","fieldData":null}
		]}`))
	}))

	items, err := client.ListItems(context.Background(), "col-1", 10, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "it-1", items[0].ID)
	assert.True(t, items[0].IsDraft)
	assert.Equal(t, "one", items[0].Slug())

	// null fieldData still yields a usable map
	assert.NotNil(t, items[1].FieldData)
	assert.Equal(t, "", items[1].Slug())
}

func TestCreateItemDraftAndLivePaths(t *testing.T) {
	var paths []string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)

		var payload struct {
			FieldData map[string]any `json:"fieldData"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Widget", payload.FieldData["name"])

		_, _ = w.Write([]byte(`{"id":"new-1","fieldData":{"name":"Widget"}}`))
	}))

	fields := map[string]any{"name": "Widget"}

	item, err := client.CreateItem(context.Background(), "col-1", fields, false)
	require.NoError(t, err)
	assert.Equal(t, "new-1", item.ID)

	_, err = client.CreateItem(context.Background(), "col-1", fields, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /collections/col-1/items",
		"POST /collections/col-1/items/live",
	}, paths)
}

func TestUpdateItemPatches(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/collections/col-1/items/it-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"it-9","fieldData":{"name":"Updated"}}`))
	}))

	item, err := client.UpdateItem(context.Background(), "col-1", "it-9", map[string]any{"name": "Updated"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Updated", item.FieldData["name"])
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Rate limit hit"}`))
	}))

	err := client.VerifyToken(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Rate limit hit")
}

func TestCollectionSchema(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/col-1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id":"col-1","displayName":"Products","slug":"products",
			"fields":[
				{"id":"f1","slug":"name","displayName":"Name","type":"PlainText","isRequired":true},
				{"id":"f2","slug":"price","displayName":"Price","type":"Number","isRequired":false}
			]}`))
	}))

	col, err := client.Collection(context.Background(), "col-1")
	require.NoError(t, err)

	assert.Equal(t, "Products", col.DisplayName)
	require.Len(t, col.Fields, 2)
	assert.Equal(t, "name", col.Fields[0].Slug)
	assert.True(t, col.Fields[0].Required)
	assert.Equal(t, "Number", col.Fields[1].Type)
}

func TestSitesAndCollections(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sites":
			_, _ = w.Write([]byte(`{"sites":[{"id":"s1","displayName":"Store","shortName":"store"}]}`))
		case "/sites/s1/collections":
			_, _ = w.Write([]byte(`{"collections":[{"id":"col-1","displayName":"Products","slug":"products"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))

	sites, err := client.Sites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Store", sites[0].DisplayName)

	cols, err := client.Collections(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "products", cols[0].Slug)
}

func TestRateLimiterPacesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	interval := 50 * time.Millisecond
	cfg := utils.CMSConfig{BaseURL: srv.URL, PageSize: 100, RateInterval: interval}
	client := NewClient("tok", cfg, zerolog.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, client.VerifyToken(context.Background()))
	}
	// first call is immediate, the next two wait one interval each
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}
