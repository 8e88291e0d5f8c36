package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Amaan112005/mindmate/models"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthStore struct {
	CreateUserFunc            func(ctx context.Context, user *models.User) error
	GetUserByUsernameFunc     func(ctx context.Context, username string) (*models.User, error)
	GetUserByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	GetUserByIDFunc           func(ctx context.Context, id string) (*models.User, error)
	UpdateUserFunc            func(ctx context.Context, user *models.User) error
	TouchLastLoginFunc        func(ctx context.Context, userID string) error
	DeactivateUserFunc        func(ctx context.Context, userID string) error
	CreateSessionFunc         func(ctx context.Context, session *models.Session) error
	GetSessionByTokenFunc     func(ctx context.Context, hashedToken string) (*models.Session, error)
	DeleteAllUserSessionsFunc func(ctx context.Context, userID string) error
}

func (m *mockAuthStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockAuthStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetUserByUsernameFunc(ctx, username)
}
func (m *mockAuthStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockAuthStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}
func (m *mockAuthStore) UpdateUser(ctx context.Context, user *models.User) error {
	return m.UpdateUserFunc(ctx, user)
}
func (m *mockAuthStore) TouchLastLogin(ctx context.Context, userID string) error {
	return m.TouchLastLoginFunc(ctx, userID)
}
func (m *mockAuthStore) DeactivateUser(ctx context.Context, userID string) error {
	return m.DeactivateUserFunc(ctx, userID)
}
func (m *mockAuthStore) CreateSession(ctx context.Context, session *models.Session) error {
	return m.CreateSessionFunc(ctx, session)
}
func (m *mockAuthStore) GetSessionByToken(ctx context.Context, hashedToken string) (*models.Session, error) {
	return m.GetSessionByTokenFunc(ctx, hashedToken)
}
func (m *mockAuthStore) DeleteAllUserSessions(ctx context.Context, userID string) error {
	return m.DeleteAllUserSessionsFunc(ctx, userID)
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	user := &models.User{
		ID:       "user-1",
		Username: "alice",
		Password: hashedPassword(t, "secret123"),
		Role:     models.RolePatient,
	}

	var sessions []*models.Session
	touched := false
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
		CreateSessionFunc: func(ctx context.Context, session *models.Session) error {
			sessions = append(sessions, session)
			return nil
		},
		TouchLastLoginFunc: func(ctx context.Context, userID string) error {
			touched = true
			return nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	resp, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.LongLivedToken == "" {
		t.Error("expected all three tokens to be issued")
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 stored sessions, got %d", len(sessions))
	}
	kinds := map[string]bool{sessions[0].Kind: true, sessions[1].Kind: true}
	if !kinds["refresh"] || !kinds["long_lived"] {
		t.Errorf("expected refresh and long_lived sessions, got %v", kinds)
	}
	// Stored tokens must be hashed, never the raw value
	for _, s := range sessions {
		if s.Token == resp.RefreshToken || s.Token == resp.LongLivedToken {
			t.Error("session token stored in plain text")
		}
	}
	if !touched {
		t.Error("expected last login to be recorded")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: "user-1", Username: "alice", Password: hashedPassword(t, "secret123")}, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	if _, err := svc.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	if _, err := svc.Login(context.Background(), "ghost", "whatever"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestLogin_DeactivatedUser(t *testing.T) {
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{
				ID:          "user-1",
				Username:    "alice",
				Password:    hashedPassword(t, "secret123"),
				Deactivated: true,
			}, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	if _, err := svc.Login(context.Background(), "alice", "secret123"); err == nil {
		t.Fatal("expected error for deactivated user")
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err == nil || !strings.Contains(err.Error(), "username") {
		t.Fatalf("expected username conflict error, got %v", err)
	}
}

func TestSignup_AssignsRole(t *testing.T) {
	var created *models.User
	store := &mockAuthStore{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return nil, nil
		},
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, nil
		},
		CreateUserFunc: func(ctx context.Context, user *models.User) error {
			created = user
			return nil
		},
		CreateSessionFunc: func(ctx context.Context, session *models.Session) error {
			return nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	_, err := svc.SignupTherapist(context.Background(), SignupRequest{
		Username:  "dr.bob",
		Email:     "bob@example.com",
		Password:  "secret123",
		Specialty: "CBT",
	})
	if err != nil {
		t.Fatalf("SignupTherapist returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Role != models.RoleTherapist {
		t.Errorf("role = %q; want %q", created.Role, models.RoleTherapist)
	}
	if created.Password == "secret123" {
		t.Error("password stored in plain text")
	}
}

func TestVerifyAccessToken_RoundTrip(t *testing.T) {
	user := &models.User{ID: "user-1", Username: "alice", Role: models.RolePatient}
	store := &mockAuthStore{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			if id != user.ID {
				t.Errorf("GetUserByID received id = %q; want %q", id, user.ID)
			}
			return user, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	token, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken returned error: %v", err)
	}

	got, err := svc.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("verified user ID = %q; want %q", got.ID, user.ID)
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	user := &models.User{ID: "user-1", Username: "alice"}
	store := &mockAuthStore{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	issuer := NewAuthService(store, "secret-a")
	verifier := NewAuthService(store, "secret-b")

	token, err := issuer.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken returned error: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(context.Background(), token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestVerifyAccessToken_DeactivatedUser(t *testing.T) {
	user := &models.User{ID: "user-1", Username: "alice"}
	store := &mockAuthStore{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: "user-1", Deactivated: true}, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	token, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken returned error: %v", err)
	}

	if _, err := svc.VerifyAccessToken(context.Background(), token); err == nil {
		t.Fatal("expected error for deactivated user")
	}
}

func TestRefreshAccess_InvalidToken(t *testing.T) {
	store := &mockAuthStore{
		GetSessionByTokenFunc: func(ctx context.Context, hashedToken string) (*models.Session, error) {
			return nil, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	if _, err := svc.RefreshAccess(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for unknown session token")
	}
}

func TestRefreshAccess_LooksUpHashedToken(t *testing.T) {
	user := &models.User{ID: "user-1", Username: "alice"}
	raw := "raw-session-token"

	var lookedUp string
	store := &mockAuthStore{
		GetSessionByTokenFunc: func(ctx context.Context, hashedToken string) (*models.Session, error) {
			lookedUp = hashedToken
			return &models.Session{UserID: user.ID, Token: hashedToken}, nil
		},
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	resp, err := svc.RefreshAccess(context.Background(), raw)
	if err != nil {
		t.Fatalf("RefreshAccess returned error: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected a new access token")
	}
	if lookedUp == raw {
		t.Error("session lookup used the raw token instead of its hash")
	}
	if lookedUp != svc.hashToken(raw) {
		t.Error("session lookup did not use the token hash")
	}
}

func TestDeactivate_DestroysSessions(t *testing.T) {
	deactivated := false
	sessionsDeleted := false
	store := &mockAuthStore{
		DeactivateUserFunc: func(ctx context.Context, userID string) error {
			deactivated = true
			return nil
		},
		DeleteAllUserSessionsFunc: func(ctx context.Context, userID string) error {
			sessionsDeleted = true
			return nil
		},
	}
	svc := NewAuthService(store, "test-secret")

	if err := svc.Deactivate(context.Background(), "user-1"); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if !deactivated {
		t.Error("expected user to be flagged deactivated")
	}
	if !sessionsDeleted {
		t.Error("expected sessions to be destroyed")
	}
}

func TestLogout_Error(t *testing.T) {
	wantErr := errors.New("delete failed")
	store := &mockAuthStore{
		DeleteAllUserSessionsFunc: func(ctx context.Context, userID string) error {
			return wantErr
		},
	}
	svc := NewAuthService(store, "test-secret")

	if err := svc.Logout(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when session deletion fails")
	}
}
