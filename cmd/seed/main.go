package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tailtown/internal/database"
	"tailtown/internal/domain"
	"tailtown/internal/repository"
)

// Seeds a demo tenant with a realistic lodging layout and a few
// reservations so the API has something to show out of the box.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "tailtown.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db,
		repository.ResourceModel(),
		repository.ReservationModel(),
		repository.RecurrencePatternModel(),
	); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM recurrence_patterns")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM resources")

	ctx := context.Background()
	const tenantID = 1

	resourceRepo := repository.NewResourceRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	log.Println("Creating resources...")
	specs := []struct {
		prefix string
		typ    domain.ResourceType
		count  int
	}{
		{"S", domain.ResourceStandard, 10},
		{"P", domain.ResourcePlus, 6},
		{"V", domain.ResourceVIP, 4},
		{"B", domain.ResourceBathing, 2},
	}

	var suites []domain.Resource
	for _, spec := range specs {
		for i := 1; i <= spec.count; i++ {
			res := domain.Resource{
				TenantID: tenantID,
				Name:     fmt.Sprintf("%s%02d", spec.prefix, i),
				Type:     spec.typ,
				Capacity: 1,
				Active:   true,
			}
			if err := resourceRepo.Create(ctx, &res); err != nil {
				log.Fatal("Failed to create resource:", err)
			}
			if spec.typ != domain.ResourceBathing {
				suites = append(suites, res)
			}
		}
	}

	log.Println("Creating reservations...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, suite := range suites {
		if i%3 != 0 {
			continue
		}
		start := today.AddDate(0, 0, i%7)
		r := domain.Reservation{
			TenantID:    tenantID,
			CustomerID:  int64(100 + i),
			PetID:       int64(500 + i),
			ResourceID:  &suite.ID,
			ServiceID:   1,
			Status:      domain.ReservationConfirmed,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 3+i%4),
			OrderNumber: fmt.Sprintf("seed-%03d", i),
			Notes:       "seeded boarding stay",
		}
		if err := reservationRepo.Create(ctx, &r); err != nil {
			log.Fatal("Failed to create reservation:", err)
		}
	}

	log.Println("Seed complete.")
}
