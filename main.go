package main

import (
	"context"
	"time"

	"UploadInbox/config"
	"UploadInbox/internal/handler"
	"UploadInbox/internal/logger"
	"UploadInbox/internal/mq"
	"UploadInbox/internal/repo"
	"UploadInbox/internal/service"
	"UploadInbox/internal/storage"
	"UploadInbox/router"

	"go.uber.org/zap"
)

// main wires the services together and starts the HTTP server plus the
// periodic inbox inspection.
func main() {
	cfg := config.Load()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := repo.Open(cfg)
	if err != nil {
		log.Fatalw("could not connect to database", "error", err)
	}
	records := repo.NewRecords(db)

	locations, err := storage.NewLocations(cfg.Storage)
	if err != nil {
		log.Fatalw("could not set up storage locations", "error", err)
	}

	client, err := mq.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalw("could not connect to event bus", "error", err)
	}
	defer client.Close()
	if err := client.DeclareTopology(); err != nil {
		log.Fatalw("could not declare event topology", "error", err)
	}
	publisher := mq.NewPublisher(client)

	files := service.NewFileMetadataService(records, log)
	uploads := service.NewUploadService(records, locations, publisher, cfg.PartURLExpiry, log)
	inspector := service.NewInboxInspector(records, locations, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runInspector(ctx, inspector, cfg.InspectorInterval, log)

	r := router.InitRouter(handler.New(uploads, files, log))
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

// runInspector sweeps the storage locations on a fixed interval.
func runInspector(ctx context.Context, inspector *service.InboxInspector, interval time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := inspector.CheckBuckets(ctx); err != nil {
				log.Errorw("inbox inspection failed", "error", err)
			}
		}
	}
}
