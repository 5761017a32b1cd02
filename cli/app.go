package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/coreybb/lectio/api"
	"github.com/coreybb/lectio/bible"
	"github.com/coreybb/lectio/config"
	"github.com/coreybb/lectio/datastore"
	"github.com/coreybb/lectio/delivery"
	"github.com/coreybb/lectio/scheduler"
	"github.com/coreybb/lectio/storage"
)

// app is a fully wired Scheduler plus the optional pieces behind it.
type app struct {
	scheduler *scheduler.Scheduler
	attempts  api.AttemptLister
	db        *sql.DB
}

// newApp wires providers, history and archive from cfg. Delivery history
// and the message archive are only enabled when configured.
func newApp(ctx context.Context, cfg config.Config, opts scheduler.Options) (*app, error) {
	fetcher := bible.NewFetcher(bible.Config{
		APIKey:          cfg.ESVAPIKey,
		ESVBaseURL:      cfg.ESVBaseURL,
		BibleAPIBaseURL: cfg.BibleAPIBaseURL,
		Timeout:         cfg.HTTPTimeout,
	})
	log.Printf("INFO (App): Using %s provider (%s)", fetcher.Provider(), fetcher.Provider().Translation())

	a := &app{}

	var (
		recorder delivery.AttemptRecorder
		history  scheduler.DeliveryHistory
		archive  storage.MessageStorer
	)
	if cfg.DatabaseURL != "" {
		db, dialect, err := datastore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("delivery history setup failed: %w", err)
		}
		repo := datastore.NewDeliveryAttemptRepository(db, dialect)
		a.db = db
		a.attempts = repo
		recorder = repo
		history = repo
	}
	if cfg.ArchiveDir != "" {
		archive = storage.NewLocalFileStorer(cfg.ArchiveDir)
	}

	telegram := delivery.NewTelegramDeliveryProvider(cfg.TelegramToken, cfg.TelegramBaseURL, cfg.HTTPTimeout)
	service := delivery.NewDeliveryService(recorder, telegram)

	opts.ChatID = cfg.TelegramChatID
	a.scheduler = scheduler.New(opts, fetcher, service, history, archive)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
