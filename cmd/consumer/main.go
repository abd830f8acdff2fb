package main

import (
	"context"
	"os/signal"
	"syscall"

	"UploadInbox/config"
	"UploadInbox/internal/logger"
	"UploadInbox/internal/mq"
	"UploadInbox/internal/repo"
	"UploadInbox/internal/service"
	"UploadInbox/internal/storage"
	"UploadInbox/internal/worker"
)

// main runs the inbound event consumer. It shares the service layer with the
// API process but has no HTTP surface.
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
	publisher := mq.NewPublisher(client)

	files := service.NewFileMetadataService(records, log)
	uploads := service.NewUploadService(records, locations, publisher, cfg.PartURLExpiry, log)
	dispatcher := worker.NewDispatcher(files, uploads)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("consumer started", "queue", mq.QueueInbound)
	if err := worker.RunConsumer(ctx, cfg, client, dispatcher, log); err != nil {
		log.Fatalw("consumer stopped", "error", err)
	}
}
