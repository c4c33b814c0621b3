// cmd/tools/train-model/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fretwatch/internal/common/config"
	"fretwatch/internal/common/database"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/comps"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
	"fretwatch/internal/predict"
	"fretwatch/internal/scoring"
	"fretwatch/internal/valuation"
)

func main() {
	maxComps := flag.Int("max-comps", 5000, "Maximum comps to train on")
	out := flag.String("out", "", "Model output path (defaults to ml.model_path)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	path := cfg.ML.ModelPath
	if *out != "" {
		path = *out
	}
	if path == "" {
		fmt.Println("Error: no model output path; set ml.model_path or pass -out.")
		os.Exit(1)
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
		os.Exit(1)
	}
	store := comps.NewStore(es, cfg.Database.Elasticsearch.CompsIndex, log)

	ctx := context.Background()
	soldComps, err := store.Search(ctx, "", "", *maxComps)
	if err != nil {
		fmt.Printf("Error loading comps: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d sold comps\n", len(soldComps))

	rows := buildRows(ctx, soldComps, cfg.Budget, log)
	fmt.Printf("Built %d training rows\n", len(rows))

	trainer := predict.NewTrainer(cfg.ML.MinTrainingRows)
	model, err := trainer.Train(rows)
	if err != nil {
		fmt.Printf("Error training model: %v\n", err)
		os.Exit(1)
	}

	if err := model.Save(path); err != nil {
		fmt.Printf("Error saving model: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Model trained on %d samples, saved to %s\n", model.Samples, path)
}

// buildRows turns sold comps into labeled examples. Each comp is scored by
// the rule engine as if it were a live listing; that composite is the
// label. The trained model therefore generalizes the rule scorer's
// judgment over instruments the market actually moved.
func buildRows(ctx context.Context, soldComps []comps.SoldComp, budget config.BudgetConfig, log logger.Logger) []predict.TrainingRow {
	kb := knowledge.Default()
	extractor := predict.NewExtractor(kb)
	valuator := valuation.NewValuator(kb, nil, nil, log)
	engine := scoring.NewEngine(kb, budget, log)

	rows := make([]predict.TrainingRow, 0, len(soldComps))
	for _, c := range soldComps {
		snap := snapshotFromComp(c)
		val := valuator.Valuate(ctx, snap.Brand, snap.Model, snap.Year)
		breakdown := engine.Score(snap, val, nil, nil)
		rows = append(rows, predict.TrainingRow{
			Features: extractor.Extract(snap, val, nil),
			Label:    breakdown.Composite,
		})
	}
	return rows
}

func snapshotFromComp(c comps.SoldComp) models.ListingSnapshot {
	return models.ListingSnapshot{
		ID:         c.ListingID,
		Brand:      c.Brand,
		Model:      c.Model,
		Type:       models.ParseGuitarType(c.Type),
		Year:       c.Year,
		Condition:  models.ParseCondition(c.Condition),
		Price:      c.Price,
		SourceSite: c.SourceSite,
		ObservedAt: c.LastSeenAt,
	}
}
