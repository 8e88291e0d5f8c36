package services

import (
	"context"
	"testing"

	"github.com/Amaan112005/mindmate/models"
	"golang.org/x/crypto/bcrypt"
)

type mockSeederStore struct {
	GetUserByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	CreateUserFunc        func(ctx context.Context, user *models.User) error
	GetResourceByNameFunc func(ctx context.Context, name string) (*models.Resource, error)
	CreateResourceFunc    func(ctx context.Context, resource *models.Resource) error
}

func (m *mockSeederStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockSeederStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockSeederStore) GetResourceByName(ctx context.Context, name string) (*models.Resource, error) {
	return m.GetResourceByNameFunc(ctx, name)
}
func (m *mockSeederStore) CreateResource(ctx context.Context, resource *models.Resource) error {
	return m.CreateResourceFunc(ctx, resource)
}

func emptySeederStore() (*mockSeederStore, *[]models.User, *[]models.Resource) {
	var users []models.User
	var resources []models.Resource
	store := &mockSeederStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, nil
		},
		CreateUserFunc: func(ctx context.Context, user *models.User) error {
			users = append(users, *user)
			return nil
		},
		GetResourceByNameFunc: func(ctx context.Context, name string) (*models.Resource, error) {
			return nil, nil
		},
		CreateResourceFunc: func(ctx context.Context, resource *models.Resource) error {
			resources = append(resources, *resource)
			return nil
		},
	}
	return store, &users, &resources
}

func TestSeedDatabase_CreatesAdminUser(t *testing.T) {
	store, users, _ := emptySeederStore()
	seeder := NewDatabaseSeeder(store)

	if err := seeder.SeedDatabase(); err != nil {
		t.Fatalf("SeedDatabase returned error: %v", err)
	}

	var admin *models.User
	for i := range *users {
		if (*users)[i].Role == models.RoleAdmin {
			admin = &(*users)[i]
		}
	}
	if admin == nil {
		t.Fatal("no admin-role user was seeded")
	}
	if admin.Username != "admin" {
		t.Errorf("admin username = %q; want admin", admin.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("password")); err != nil {
		t.Error("admin password is not a bcrypt hash of the seed password")
	}
}

func TestSeedDatabase_SeedsCrisisResources(t *testing.T) {
	store, _, resources := emptySeederStore()
	seeder := NewDatabaseSeeder(store)

	if err := seeder.SeedDatabase(); err != nil {
		t.Fatalf("SeedDatabase returned error: %v", err)
	}

	names := map[string]bool{}
	for _, r := range *resources {
		names[r.Name] = true
	}
	for _, want := range []string{"988 Suicide & Crisis Lifeline", "Crisis Text Line"} {
		if !names[want] {
			t.Errorf("missing seeded resource %q", want)
		}
	}
}

func TestSeedDatabase_Idempotent(t *testing.T) {
	store, users, resources := emptySeederStore()
	store.GetUserByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{Email: email}, nil
	}
	store.GetResourceByNameFunc = func(ctx context.Context, name string) (*models.Resource, error) {
		return &models.Resource{Name: name}, nil
	}
	seeder := NewDatabaseSeeder(store)

	if err := seeder.SeedDatabase(); err != nil {
		t.Fatalf("SeedDatabase returned error: %v", err)
	}
	if len(*users) != 0 || len(*resources) != 0 {
		t.Errorf("seeder re-created existing rows: %d users, %d resources", len(*users), len(*resources))
	}
}
