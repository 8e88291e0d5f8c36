package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amaan112005/mindmate/models"
	"golang.org/x/crypto/bcrypt"
)

// SeederStore is the slice of the repository the seeder needs.
type SeederStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetResourceByName(ctx context.Context, name string) (*models.Resource, error)
	CreateResource(ctx context.Context, resource *models.Resource) error
}

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo SeederStore
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo SeederStore) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the database with initial data (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []models.User{
		{
			Username:  "admin",
			Email:     "admin@mindmate.local",
			Password:  string(hashedPassword),
			FirstName: "MindMate",
			LastName:  "Admin",
			Role:      models.RoleAdmin,
		},
		{
			Username:  "demo",
			Email:     "demo@example.com",
			Password:  string(hashedPassword),
			FirstName: "Demo",
			LastName:  "User",
			Role:      models.RolePatient,
		},
		{
			Username:  "dr.rivera",
			Email:     "rivera@example.com",
			Password:  string(hashedPassword),
			FirstName: "Sam",
			LastName:  "Rivera",
			Role:      models.RoleTherapist,
			Specialty: "Anxiety and Depression",
			Bio:       "Licensed therapist with ten years of experience in CBT.",
			Available: true,
		},
		{
			Username:  "dr.okafor",
			Email:     "okafor@example.com",
			Password:  string(hashedPassword),
			FirstName: "Chidi",
			LastName:  "Okafor",
			Role:      models.RoleTherapist,
			Specialty: "Trauma and PTSD",
			Bio:       "Specializes in trauma-informed care and EMDR.",
			Available: true,
		},
	}

	for _, user := range users {
		if err := s.seedUser(ctx, user); err != nil {
			slog.Error("Failed to seed user", "email", user.Email, "error", err)
		}
	}

	resources := []models.Resource{
		{
			Name:        "988 Suicide & Crisis Lifeline",
			Kind:        "hotline",
			Contact:     "Call or text 988",
			Description: "Free, confidential support for people in distress, 24/7.",
			Rating:      5.0,
		},
		{
			Name:        "Crisis Text Line",
			Kind:        "hotline",
			Contact:     "Text HOME to 741741",
			Description: "Free 24/7 text support with a trained crisis counselor.",
			Rating:      5.0,
		},
		{
			Name:        "SAMHSA National Helpline",
			Kind:        "hotline",
			Contact:     "1-800-662-4357",
			Description: "Treatment referral and information service for mental health and substance use.",
			Rating:      4.8,
		},
		{
			Name:        "International Association for Suicide Prevention",
			Kind:        "directory",
			Contact:     "https://www.iasp.info/resources/Crisis_Centres/",
			Description: "Directory of crisis centers outside the United States.",
			Rating:      4.5,
		},
		{
			Name:        "Psychology Today Therapist Finder",
			Kind:        "directory",
			Contact:     "https://www.psychologytoday.com/us/therapists",
			Description: "Searchable directory of licensed therapists by location and specialty.",
			Rating:      4.3,
		},
	}

	for _, resource := range resources {
		if err := s.seedResource(ctx, resource); err != nil {
			slog.Error("Failed to seed resource", "name", resource.Name, "error", err)
		}
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// seedUser seeds a single user (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existingUser, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", user.Email, err)
	}
	if existingUser != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email, "role", user.Role)
	return nil
}

// seedResource seeds a single resource (idempotent)
func (s *DatabaseSeeder) seedResource(ctx context.Context, resource models.Resource) error {
	existing, err := s.repo.GetResourceByName(ctx, resource.Name)
	if err != nil {
		return fmt.Errorf("error checking resource %s: %w", resource.Name, err)
	}
	if existing != nil {
		slog.Info("Resource already exists, skipping", "name", resource.Name)
		return nil
	}

	if err := s.repo.CreateResource(ctx, &resource); err != nil {
		return fmt.Errorf("failed to create resource %s: %w", resource.Name, err)
	}

	slog.Info("Created resource", "name", resource.Name)
	return nil
}
