// Command seed provisions a database for local development: an admin user
// for the Basic Auth endpoints and a set of demo events with ticket
// categories.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"eventgate/internal/config"
	"eventgate/internal/database"
	"eventgate/internal/logger"
	"eventgate/internal/models"
	"eventgate/internal/repository"
	"eventgate/internal/service"
)

var (
	adminEmail    = flag.String("admin-email", "admin@eventgate.local", "Admin user email")
	adminPassword = flag.String("admin-password", "", "Admin user password (required)")
	demoEvents    = flag.Bool("demo", false, "Seed demo events and tickets")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")
	log := logger.Get()

	if *adminPassword == "" {
		log.Error("admin-password is required")
		flag.Usage()
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	if err := seedAdmin(ctx, repos, *adminEmail, *adminPassword); err != nil {
		logger.Fatal("Failed to seed admin user", "error", err)
	}

	if *demoEvents {
		if err := seedDemoEvents(ctx, repos); err != nil {
			logger.Fatal("Failed to seed demo events", "error", err)
		}
	}

	log.Info("Seeding completed")
}

func seedAdmin(ctx context.Context, repos *repository.Repositories, email, password string) error {
	existing, err := repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Get().Info("Admin user already exists", "email", email)
		return nil
	}

	hash := sha256.Sum256([]byte(password))
	user := &models.User{
		Email:        email,
		PasswordHash: fmt.Sprintf("%x", hash),
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		return err
	}

	logger.Get().Info("Created admin user", "email", email, "user_id", user.ID)
	return nil
}

func seedDemoEvents(ctx context.Context, repos *repository.Repositories) error {
	events := service.NewEventService(repos.Events, repos.Tickets, nil)
	tickets := service.NewTicketService(repos.Events, repos.Tickets)

	venue := "Exhibition Centre"
	city := "Berlin"
	country := "Germany"
	description := "Two days of talks, workshops and hallway conversations."
	capacity := 500
	ends := time.Now().AddDate(0, 2, 2)

	demos := []struct {
		event   models.CreateEventRequest
		tickets []models.CreateTicketRequest
	}{
		{
			event: models.CreateEventRequest{
				Title:       "GopherCon Europe",
				Description: &description,
				Venue:       &venue,
				City:        &city,
				Country:     &country,
				StartsAt:    time.Now().AddDate(0, 2, 0),
				EndsAt:      &ends,
				Capacity:    &capacity,
				IsPublished: true,
			},
			tickets: []models.CreateTicketRequest{
				{Type: "Early Bird", Price: decimal.NewFromInt(149), Quantity: 100},
				{Type: "Standard", Price: decimal.NewFromInt(249), Quantity: 350},
				{Type: "Supporter", Price: decimal.NewFromInt(499), Quantity: 50},
			},
		},
		{
			event: models.CreateEventRequest{
				Title:       "Cloud Native Meetup",
				City:        &city,
				Country:     &country,
				StartsAt:    time.Now().AddDate(0, 1, 0),
				IsPublished: true,
			},
			tickets: []models.CreateTicketRequest{
				{Type: "Free Entry", Price: decimal.Zero, Quantity: 80},
			},
		},
	}

	for _, demo := range demos {
		event, err := events.Create(ctx, &demo.event)
		if err != nil {
			return err
		}
		for i := range demo.tickets {
			if _, err := tickets.Create(ctx, event.ID, &demo.tickets[i]); err != nil {
				return err
			}
		}
		logger.Get().Info("Seeded event", "event_id", event.ID, "title", event.Title, "tickets", len(demo.tickets))
	}

	return nil
}
