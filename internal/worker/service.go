// Package worker is the queue-consumer process. It runs the invoice pipeline
// for confirmed registrations and a periodic repair job that re-enqueues
// registrations whose artifacts never materialized.
package worker

import (
	"context"

	"eventgate/internal/config"
	"eventgate/internal/database"
	"eventgate/internal/invoice"
	"eventgate/internal/logger"
	"eventgate/internal/mail"
	"eventgate/internal/messaging"
	"eventgate/internal/models"
	"eventgate/internal/repository"
	"eventgate/internal/storage"
)

const queueGroup = "workers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
	repair   *RepairJob
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)

	store := storage.NewDiskStore(cfg.Storage.Root, cfg.Storage.BaseURL)
	mailer := mail.NewSMTPMailer(cfg.SMTP)
	pipeline := invoice.NewPipeline(repos.Registrations, store, mailer)

	handlers := NewHandlers(pipeline)
	repair := NewRepairJob(repos.Registrations, natsClient, cfg.Invoice)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
		repair:   repair,
	}, nil
}

func (cs *ConsumerService) Start() error {
	logger.Get().Info("Starting queue consumers")

	_, err := cs.nats.SubscribeQueue(models.SubjectRegistrationConfirmed, queueGroup, cs.handlers.HandleRegistrationConfirmed)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.SubjectRegistrationDeleted, queueGroup, cs.handlers.HandleRegistrationDeleted)
	if err != nil {
		return err
	}

	cs.repair.Start()

	logger.Get().Info("All consumers started")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	logger.Get().Info("Shutting down worker")

	cs.repair.Stop()

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
