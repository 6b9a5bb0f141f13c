package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"flowdesk/internal/importer"
	"flowdesk/internal/webflow"
	"flowdesk/pkg/logging"
	"flowdesk/pkg/models"
	"flowdesk/pkg/utils"
)

// Headless import: feed a CSV straight into a collection without the admin
// UI. Column names must already be field slugs unless -mapping is given.
func main() {
	var (
		in         = flag.String("file", "data/items.csv", "input CSV path")
		collection = flag.String("collection", "", "target collection id (required)")
		mappingIn  = flag.String("mapping", "", "optional JSON file mapping source columns to field slugs")
		mode       = flag.String("mode", "upsert", "import mode: upsert or create")
		live       = flag.Bool("live", false, "publish items immediately instead of saving drafts")
		dryRun     = flag.Bool("dry-run", false, "classify rows and exit without remote calls")
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

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal().Err(err).Str("file", *in).Msg("read input failed")
	}

	_, rows, err := importer.ParseCSV(data)
	if err != nil {
		log.Fatal().Err(err).Msg("parse csv failed")
	}

	if *mappingIn != "" {
		var mapping models.FieldMapping
		raw, err := os.ReadFile(*mappingIn)
		if err != nil {
			log.Fatal().Err(err).Str("file", *mappingIn).Msg("read mapping failed")
		}
		if err := json.Unmarshal(raw, &mapping); err != nil {
			log.Fatal().Err(err).Msg("decode mapping failed")
		}
		rows = importer.ApplyMapping(rows, mapping)
	}

	if *dryRun {
		result := importer.DryRun(rows)
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client := webflow.NewClient(token, utils.LoadCMSConfig(), log)
	runner := &importer.Runner{
		Store: client,
		Log:   log,
		Progress: func(ev importer.Event) {
			if ev.Phase == "process" {
				log.Info().Int("current", ev.Current).Int("total", ev.Total).Msg(ev.Message)
			}
		},
	}

	var result models.ImportResult
	switch *mode {
	case "create":
		result = runner.CreateAll(ctx, *collection, rows, *live)
	case "upsert":
		result, err = runner.Reconcile(ctx, *collection, rows, *live)
		if err != nil {
			log.Fatal().Err(err).Msg("import failed")
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("mode must be upsert or create")
	}

	for _, rowErr := range result.Errors {
		log.Warn().Int("row", rowErr.Index).Msg(rowErr.Message)
	}
	log.Info().
		Int("total", result.Total).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed()).
		Msg("import finished")

	if result.Failed() > 0 {
		os.Exit(1)
	}
}
