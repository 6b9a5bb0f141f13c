package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"flowdesk/internal/webflow"
	"flowdesk/pkg/logging"
	"flowdesk/pkg/models"
	"flowdesk/pkg/utils"
)

// Dumps a collection's items to CSV. The header is the union of all field
// slugs seen, with id and slug first, so the file round-trips through
// import-csv.
func main() {
	var (
		out        = flag.String("out", "data/items.csv", "output CSV path")
		collection = flag.String("collection", "", "source collection id (required)")
	)
	flag.Parse()

	utils.LoadDotEnv()
	log := logging.New()

	if *collection == "" {
		log.Fatal().Msg("-collection is required")
	}

	token := os.Getenv("FLOWDESK_CMS_TOKEN")
	if err := webflow.ValidateToken(token); err != nil {
		log.Fatal().Err(err).Msg("set FLOWDESK_CMS_TOKEN to a valid api token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client := webflow.NewClient(token, utils.LoadCMSConfig(), log)

	items, err := fetchAll(ctx, client, *collection)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch items failed")
	}

	if err := writeCSV(*out, items); err != nil {
		log.Fatal().Err(err).Msg("write csv failed")
	}

	log.Info().Int("items", len(items)).Str("out", *out).Msg("export finished")
}

func fetchAll(ctx context.Context, client *webflow.Client, collectionID string) ([]models.Item, error) {
	var all []models.Item

	limit := client.PageSize()
	for offset := 0; ; offset += limit {
		page, err := client.ListItems(ctx, collectionID, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < limit {
			break
		}
	}
	return all, nil
}

func writeCSV(outPath string, items []models.Item) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	header := buildHeader(items)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, item := range items {
		rec := make([]string, len(header))
		for i, col := range header {
			if col == "id" {
				rec[i] = item.ID
				continue
			}
			if v, ok := item.FieldData[col]; ok && v != nil {
				rec[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func buildHeader(items []models.Item) []string {
	seen := map[string]bool{}
	for _, item := range items {
		for k := range item.FieldData {
			if k != "slug" {
				seen[k] = true
			}
		}
	}

	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)

	return append([]string{"id", "slug"}, rest...)
}
