package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kavin1231/campusconnect-event-management/internal/config"
	"github.com/kavin1231/campusconnect-event-management/internal/crypto"
	"github.com/kavin1231/campusconnect-event-management/internal/db"
	"github.com/kavin1231/campusconnect-event-management/internal/model"
	"github.com/kavin1231/campusconnect-event-management/internal/repository"
)

// Staff accounts are provisioned here, never through the registration
// endpoint. Re-running the seed is safe: staff inserts are keyed on email
// and events are only inserted into an empty table.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	store := repository.NewStore(pool)

	seedStaff(ctx, store, cfg.BcryptCost, "System Admin", "admin@campusconnect.edu", "Admin@123", model.RoleSystemAdmin)
	seedStaff(ctx, store, cfg.BcryptCost, "Event Organizer", "organizer@campusconnect.edu", "Organizer@123", model.RoleEventOrganizer)
	seedEvents(ctx, store)
}

func seedStaff(ctx context.Context, store *repository.Store, cost int, name, email, password, role string) {
	hash, err := crypto.HashPassword(password, cost)
	if err != nil {
		log.Fatalf("hash password for %s: %v", email, err)
	}

	created, err := store.CreateStaffUser(ctx, model.StaffUser{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("seed staff %s: %v", email, err)
	}
	if created {
		log.Printf("seeded %s (%s)", email, role)
	} else {
		log.Printf("%s already present, skipped", email)
	}
}

func seedEvents(ctx context.Context, store *repository.Store) {
	count, err := store.CountEvents(ctx)
	if err != nil {
		log.Fatalf("count events: %v", err)
	}
	if count > 0 {
		log.Printf("events already present, skipped")
		return
	}

	events := []model.Event{
		{
			Title:       "AI & Robotics Workshop",
			Description: "Hands-on session on autonomous robotics and applied machine learning.",
			Category:    "TECH",
			Location:    "Engineering Block, Hall A",
			Date:        time.Date(2026, time.October, 24, 10, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Intra-University Sprint Meet",
			Description: "Track and field qualifiers open to all departments.",
			Category:    "SPORTS",
			Location:    "Main Sports Complex",
			Date:        time.Date(2026, time.October, 28, 8, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Midnight Canvas: Live Painting",
			Description: "Open-air live painting night with the fine arts society.",
			Category:    "ARTS",
			Location:    "Central Plaza Garden",
			Date:        time.Date(2026, time.November, 2, 19, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Battle of the Bands: Auditions",
			Description: "Campus bands compete for the annual fest headline slot.",
			Category:    "MUSIC",
			Location:    "Auditorium 2",
			Date:        time.Date(2026, time.November, 5, 17, 0, 0, 0, time.UTC),
		},
		{
			Title:       "International Relations Mock UN",
			Description: "Delegate registrations for the model united nations sitting.",
			Category:    "DEBATE",
			Location:    "Humanities Seminar Room",
			Date:        time.Date(2026, time.November, 8, 9, 0, 0, 0, time.UTC),
		},
		{
			Title:       "24h Hackathon: Build for Campus",
			Description: "Overnight hackathon solving campus life problems.",
			Category:    "TECH",
			Location:    "CS Innovation Lab",
			Date:        time.Date(2026, time.November, 12, 9, 0, 0, 0, time.UTC),
		},
	}

	now := time.Now().UTC()
	for _, event := range events {
		event.ID = uuid.NewString()
		event.CreatedAt = now
		if err := store.CreateEvent(ctx, event); err != nil {
			log.Fatalf("seed event %q: %v", event.Title, err)
		}
	}
	log.Printf("seeded %d events", len(events))
}
