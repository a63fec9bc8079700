package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/drafthook/drafthook/dispatcher/internal/apiclient"
	"github.com/drafthook/drafthook/dispatcher/internal/delivery"
	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/dispatcher/internal/history"
	"github.com/drafthook/drafthook/dispatcher/internal/report"
	"github.com/drafthook/drafthook/dispatcher/internal/validation"
	"github.com/drafthook/drafthook/shared/config"
	"github.com/drafthook/drafthook/shared/domain"
	"github.com/drafthook/drafthook/shared/logger"
)

// draftFile is the on-disk session input: an ordered list of destinations,
// each with its staged items.
type draftFile []struct {
	URL   string               `json:"url"`
	Name  string               `json:"name"`
	Items []domain.ContentItem `json:"items"`
}

func main() {
	log.SetFlags(log.Lshortfile)

	var configFolder string
	var draftsPath string
	var listHistory bool
	var clearHistory bool
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.StringVar(&draftsPath, "drafts", "", "path to drafts JSON file")
	flag.BoolVar(&listHistory, "history", false, "print persisted session history and exit")
	flag.BoolVar(&clearHistory, "clear_history", false, "clear persisted session history and exit")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	client := apiclient.New(cfg.Public.History.BaseURL, cfg.ApiToken())
	hist := history.New(client, history.NewLocalStore(cfg.Public.History.CachePath), logger.Log)

	switch {
	case listHistory:
		printHistory(hist)
		return
	case clearHistory:
		if err := hist.Clear(); err != nil {
			log.Fatalf("failed to clear history: %v", err)
		}
		fmt.Println("history cleared")
		return
	}

	if draftsPath == "" {
		log.Fatal("missing -drafts file")
	}
	store, err := loadDrafts(draftsPath)
	if err != nil {
		log.Fatal(err)
	}

	if res := validation.Validate(store); !res.IsValid {
		fmt.Fprintln(os.Stderr, res.ErrorMessage)
		os.Exit(2)
	}

	d := cfg.Public.Dispatch
	sender := delivery.NewSender(
		time.Duration(d.RequestTimeoutMs)*time.Millisecond,
		d.MaxRetries,
		time.Duration(d.RateLimitPadMs)*time.Millisecond,
		logger.Log,
	)
	engine := delivery.NewEngine(sender, time.Duration(d.ItemDelayMs)*time.Millisecond, d.Footer, logger.Log)
	engine.Progress = func(done, total int) {
		fmt.Printf("\rprogress: %d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	}

	reporter := report.New(engine, sender, hist, report.Config{
		LoggingWebhook:   cfg.LoggingWebhook(),
		Footer:           d.Footer,
		DestinationDelay: time.Duration(d.DestinationDelayMs) * time.Millisecond,
		AuditDelay:       time.Duration(d.AuditDelayMs) * time.Millisecond,
	}, logger.Log)

	summary, err := reporter.Dispatch(context.Background(), store)
	if err != nil {
		if errors.Is(err, report.ErrNoDrafts) {
			fmt.Fprintln(os.Stderr, "no drafts to send")
			os.Exit(2)
		}
		log.Fatal(err)
	}

	if msg := summary.FailureMessage(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
	fmt.Printf("all items delivered: %d items across %d destinations\n",
		summary.Record.Stats.Total, len(store.Destinations()))
}

func loadDrafts(path string) (*draft.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts file: %w", err)
	}
	var file draftFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse drafts file: %w", err)
	}

	store := draft.NewStore()
	for _, dest := range file {
		for _, item := range dest.Items {
			store.Add(dest.URL, dest.Name, item)
		}
	}
	return store, nil
}

func printHistory(hist *history.Service) {
	records := hist.List()
	if len(records) == 0 {
		fmt.Println("no history")
		return
	}
	for _, rec := range records {
		fmt.Printf("%s  success %d/%d", rec.Timestamp.Format(time.RFC3339), rec.Stats.Success, rec.Stats.Total)
		if rec.Stats.Failed > 0 {
			fmt.Printf("  failed %d", rec.Stats.Failed)
		}
		fmt.Println()
		for _, item := range rec.Items {
			fmt.Printf("  [%s] %s -> %s (%s)\n", item.Type, item.Content, item.Destination, item.Status)
		}
	}
}
