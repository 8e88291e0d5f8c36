package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore is the slice of the repository the auth service needs.
type AuthStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, userID string) error
	DeactivateUser(ctx context.Context, userID string) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, hashedToken string) (*models.Session, error)
	DeleteAllUserSessions(ctx context.Context, userID string) error
}

type AuthService struct {
	store           AuthStore
	jwtSecret       []byte
	accessExpiry    time.Duration
	refreshExpiry   time.Duration
	longLivedExpiry time.Duration
}

type CookieClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	User           *models.User `json:"user"`
	AccessToken    string       `json:"access_token,omitempty"`
	RefreshToken   string       `json:"refresh_token,omitempty"`
	LongLivedToken string       `json:"long_lived_token,omitempty"`
}

func NewAuthService(store AuthStore, jwtSecret string) *AuthService {
	return &AuthService{
		store:           store,
		jwtSecret:       []byte(jwtSecret),
		accessExpiry:    5 * time.Minute,
		refreshExpiry:   7 * 24 * time.Hour,
		longLivedExpiry: 30 * 24 * time.Hour,
	}
}

// generateSecureToken generates a cryptographically secure random token
func (s *AuthService) generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// hashToken creates a SHA256 hash of the token for secure storage
func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Signup creates a new patient account.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return s.signup(ctx, req, models.RolePatient)
}

// SignupTherapist creates a new therapist account.
func (s *AuthService) SignupTherapist(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return s.signup(ctx, req, models.RoleTherapist)
}

func (s *AuthService) signup(ctx context.Context, req SignupRequest, role string) (*AuthResponse, error) {
	existing, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	existing, err = s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Gender:    req.Gender,
		Role:      role,
		Specialty: req.Specialty,
		Bio:       req.Bio,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("User signed up", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return response, nil
}

// Login authenticates a user and creates tokens.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Deactivated {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	response, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Warn("Failed to record last login", "error", err, "user_id", user.ID)
	}

	slog.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return response, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	longLivedToken, err := s.generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate long-lived token: %w", err)
	}

	now := time.Now()
	refreshSession := &models.Session{
		UserID:    user.ID,
		Token:     s.hashToken(refreshToken),
		Kind:      "refresh",
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshExpiry),
	}
	if err := s.store.CreateSession(ctx, refreshSession); err != nil {
		return nil, fmt.Errorf("failed to store refresh session: %w", err)
	}

	longLivedSession := &models.Session{
		UserID:    user.ID,
		Token:     s.hashToken(longLivedToken),
		Kind:      "long_lived",
		IssuedAt:  now,
		ExpiresAt: now.Add(s.longLivedExpiry),
	}
	if err := s.store.CreateSession(ctx, longLivedSession); err != nil {
		return nil, fmt.Errorf("failed to store long-lived session: %w", err)
	}

	return &AuthResponse{
		User:           user,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		LongLivedToken: longLivedToken,
	}, nil
}

// RefreshAccess exchanges a stored session token for a new access token.
func (s *AuthService) RefreshAccess(ctx context.Context, sessionToken string) (*AuthResponse, error) {
	session, err := s.store.GetSessionByToken(ctx, s.hashToken(sessionToken))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("invalid session token")
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Deactivated {
		return nil, fmt.Errorf("user not found")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("Access token refreshed", "user_id", user.ID)
	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
	}, nil
}

// Logout invalidates every session for the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.DeleteAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	slog.Info("User logged out", "user_id", userID)
	return nil
}

// Deactivate soft-deactivates the account and destroys its sessions.
// The user row itself is retained.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	if err := s.store.DeactivateUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if err := s.store.DeleteAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// VerifyAccessToken verifies and extracts the user from an access token.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*models.User, error) {
	claims := &CookieClaims{}

	parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	// Get user from database to ensure they still exist and are active
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Deactivated {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// generateAccessToken creates a short-lived access token
func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := &CookieClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// SetAuthCookies sets HTTP-only cookies for the token ladder.
func (s *AuthService) SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken, longLivedToken string) {
	isProduction := os.Getenv("ENVIRONMENT") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.accessExpiry.Seconds()),
	})

	if refreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     "refresh_token",
			Value:    refreshToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   isProduction,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.refreshExpiry.Seconds()),
		})
	}

	if longLivedToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     "long_lived_token",
			Value:    longLivedToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   isProduction,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.longLivedExpiry.Seconds()),
		})
	}
}

// ClearAuthCookies clears all authentication cookies
func (s *AuthService) ClearAuthCookies(w http.ResponseWriter) {
	isProduction := os.Getenv("ENVIRONMENT") == "production"
	cookies := []string{"access_token", "refresh_token", "long_lived_token"}

	for _, cookieName := range cookies {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   isProduction,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// GetTokenFromCookie extracts token from request cookies
func (s *AuthService) GetTokenFromCookie(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Middleware for cookie-based authentication
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Try the access token first
		accessToken := s.GetTokenFromCookie(r, "access_token")
		if accessToken != "" {
			user, err := s.VerifyAccessToken(r.Context(), accessToken)
			if err == nil {
				ctx := context.WithValue(r.Context(), "user", user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		// Fall back to the refresh session
		refreshToken := s.GetTokenFromCookie(r, "refresh_token")
		if refreshToken != "" {
			authResponse, err := s.RefreshAccess(r.Context(), refreshToken)
			if err == nil {
				s.SetAuthCookies(w, authResponse.AccessToken, "", "")
				ctx := context.WithValue(r.Context(), "user", authResponse.User)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		// Last resort: the long-lived session
		longLivedToken := s.GetTokenFromCookie(r, "long_lived_token")
		if longLivedToken != "" {
			authResponse, err := s.RefreshAccess(r.Context(), longLivedToken)
			if err == nil {
				s.SetAuthCookies(w, authResponse.AccessToken, "", "")
				ctx := context.WithValue(r.Context(), "user", authResponse.User)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// RequireRole guards a route group behind a role. Runs after Middleware.
func (s *AuthService) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value("user").(*models.User)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if user.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
