package main

import (
	"fmt"
	"log"
	"time"

	"transitly/internal/drivers"
	"transitly/internal/routes"
	"transitly/internal/sessions"
	"transitly/internal/shared/config"
	"transitly/internal/shared/database"
	"transitly/internal/stations"
	"transitly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Transitly Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"audit_logs",
		"notifications",
		"payments",
		"bookings",
		"seat_holds",
		"sessions",
		"driver_profiles",
		"stations",
		"routes",
		"users",
	}

	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			// Table may not exist yet on a fresh database
			fmt.Printf("  ⚠️  Skipping %s: %v\n", table, err)
		}
	}
	return nil
}

// SeedAll populates the database with demo users, routes, stations and sessions
func (s *Seeder) SeedAll() error {
	demoUsers, err := s.seedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	fmt.Printf("  👥 Seeded %d users\n", len(demoUsers))

	profileCount, err := s.seedDriverProfiles(demoUsers)
	if err != nil {
		return fmt.Errorf("failed to seed driver profiles: %w", err)
	}
	fmt.Printf("  🪪 Seeded %d driver profiles\n", profileCount)

	demoRoutes, err := s.seedRoutes()
	if err != nil {
		return fmt.Errorf("failed to seed routes: %w", err)
	}
	fmt.Printf("  🛣️  Seeded %d routes\n", len(demoRoutes))

	demoStations, err := s.seedStations()
	if err != nil {
		return fmt.Errorf("failed to seed stations: %w", err)
	}
	fmt.Printf("  🚏 Seeded %d stations\n", len(demoStations))

	sessionCount, err := s.seedSessions(demoUsers, demoRoutes, demoStations)
	if err != nil {
		return fmt.Errorf("failed to seed sessions: %w", err)
	}
	fmt.Printf("  🚌 Seeded %d sessions\n", sessionCount)

	return nil
}

func (s *Seeder) seedUsers() ([]users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	demoUsers := []users.User{
		{ID: uuid.New(), Email: "admin@transitly.dev", Password: string(hash), FirstName: "Ada", LastName: "Admin", Role: users.RoleAdmin},
		{ID: uuid.New(), Email: "driver1@transitly.dev", Password: string(hash), FirstName: "Dana", LastName: "Driver", Role: users.RoleDriver},
		{ID: uuid.New(), Email: "driver2@transitly.dev", Password: string(hash), FirstName: "Devi", LastName: "Dorsey", Role: users.RoleDriver},
		{ID: uuid.New(), Email: "passenger1@transitly.dev", Password: string(hash), FirstName: "Pat", LastName: "Passenger", Role: users.RolePassenger},
		{ID: uuid.New(), Email: "passenger2@transitly.dev", Password: string(hash), FirstName: "Priya", LastName: "Prasad", Role: users.RolePassenger},
		{ID: uuid.New(), Email: "passenger3@transitly.dev", Password: string(hash), FirstName: "Pablo", LastName: "Perez", Role: users.RolePassenger},
	}

	for i := range demoUsers {
		if err := s.db.PostgreSQL.Create(&demoUsers[i]).Error; err != nil {
			return nil, err
		}
	}
	return demoUsers, nil
}

// seedDriverProfiles files an approved profile for every seeded
// driver so they can start sessions right away.
func (s *Seeder) seedDriverProfiles(demoUsers []users.User) (int, error) {
	var adminID uuid.UUID
	for _, u := range demoUsers {
		if u.Role == users.RoleAdmin {
			adminID = u.ID
			break
		}
	}

	now := time.Now()
	plates := []string{"KA-01-AB-1234", "KA-01-CD-5678"}
	count := 0
	for _, u := range demoUsers {
		if u.Role != users.RoleDriver {
			continue
		}
		reviewer := adminID
		profile := drivers.Profile{
			ID:            uuid.New(),
			UserID:        u.ID,
			LicenseNumber: fmt.Sprintf("DL-99-2021%07d", count+1),
			VehicleModel:  "City Minibus 12",
			VehiclePlate:  plates[count%len(plates)],
			Status:        drivers.StatusApproved,
			ReviewedBy:    &reviewer,
			ReviewedAt:    &now,
		}
		if err := s.db.PostgreSQL.Create(&profile).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Seeder) seedRoutes() ([]routes.Route, error) {
	demoRoutes := []routes.Route{
		{ID: uuid.New(), Name: "Downtown Express", Origin: "Central Station", Destination: "Harbor Point", BaseFare: 4.50, IsActive: true},
		{ID: uuid.New(), Name: "Airport Shuttle", Origin: "Central Station", Destination: "International Airport", BaseFare: 12.00, IsActive: true},
		{ID: uuid.New(), Name: "University Loop", Origin: "North Campus", Destination: "South Campus", BaseFare: 2.00, IsActive: true},
		{ID: uuid.New(), Name: "Night Owl", Origin: "Harbor Point", Destination: "Hillside Terrace", BaseFare: 6.00, IsActive: false},
	}

	for i := range demoRoutes {
		if err := s.db.PostgreSQL.Create(&demoRoutes[i]).Error; err != nil {
			return nil, err
		}
	}
	return demoRoutes, nil
}

func (s *Seeder) seedStations() ([]stations.Station, error) {
	demoStations := []stations.Station{
		{ID: uuid.New(), Name: "Central Station", City: "Riverton", IsActive: true},
		{ID: uuid.New(), Name: "Harbor Point", City: "Riverton", IsActive: true},
		{ID: uuid.New(), Name: "North Campus", City: "Riverton", IsActive: true},
		{ID: uuid.New(), Name: "International Airport", City: "Fairview", IsActive: true},
	}

	for i := range demoStations {
		if err := s.db.PostgreSQL.Create(&demoStations[i]).Error; err != nil {
			return nil, err
		}
	}
	return demoStations, nil
}

func (s *Seeder) seedSessions(demoUsers []users.User, demoRoutes []routes.Route, demoStations []stations.Station) (int, error) {
	var driverUsers []users.User
	for _, u := range demoUsers {
		if u.Role == users.RoleDriver {
			driverUsers = append(driverUsers, u)
		}
	}
	if len(driverUsers) < 2 || len(demoRoutes) < 2 || len(demoStations) < 2 {
		return 0, fmt.Errorf("not enough seed data to create sessions")
	}

	now := time.Now()
	demoSessions := []sessions.Session{
		{
			ID:             uuid.New(),
			DriverID:       driverUsers[0].ID,
			RouteID:        demoRoutes[0].ID,
			StationID:      demoStations[0].ID,
			TotalSeats:     12,
			AvailableSeats: 12,
			Status:         sessions.StatusActive,
			StartedAt:      now,
		},
		{
			ID:             uuid.New(),
			DriverID:       driverUsers[1].ID,
			RouteID:        demoRoutes[1].ID,
			StationID:      demoStations[3].ID,
			TotalSeats:     8,
			AvailableSeats: 8,
			Status:         sessions.StatusActive,
			StartedAt:      now,
		},
	}

	for i := range demoSessions {
		if err := s.db.PostgreSQL.Create(&demoSessions[i]).Error; err != nil {
			return i, err
		}
	}
	return len(demoSessions), nil
}
