package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepwise/interview-coach/models"
	"github.com/prepwise/interview-coach/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the database with demo accounts (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []models.User{
		{
			Username:     "testuser",
			Email:        "test@example.com",
			PasswordHash: string(hashedPassword),
		},
		{
			Username:     "demouser",
			Email:        "demo@example.com",
			PasswordHash: string(hashedPassword),
		},
	}

	for _, user := range users {
		if err := s.seedUser(ctx, user); err != nil {
			slog.Error("Failed to seed user", "username", user.Username, "error", err)
		}
	}

	slog.Info("Database seeding completed")
	return nil
}

// seedUser creates a user unless one with the same username already exists.
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existing, err := s.repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		slog.Info("User already seeded, skipping", "username", user.Username)
		return nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Seeded user", "username", user.Username)
	return nil
}
