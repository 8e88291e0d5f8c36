package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Specialty string `json:"specialty,omitempty"` // Therapist signup only
	Bio       string `json:"bio,omitempty"`       // Therapist signup only
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Available *bool  `json:"available,omitempty"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (req *SignupRequest) validate() string {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return "username, email, password, first_name and last_name are required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if req.Age != nil && (*req.Age < 13 || *req.Age > 120) {
		return "age must be between 13 and 120"
	}
	return ""
}

func userPayload(user *models.User) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
	}
	if user.Role == models.RoleTherapist {
		payload["specialty"] = user.Specialty
		payload["available"] = user.Available
	}
	return payload
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authResponse, err := e.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Error("Login failed", "error", err, "username", req.Username)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken, authResponse.LongLivedToken)

	response := map[string]interface{}{
		"user":    userPayload(authResponse.User),
		"message": "Login successful",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *AuthEndpoints) SignupHandler(w http.ResponseWriter, r *http.Request) {
	e.signup(w, r, false)
}

func (e *AuthEndpoints) TherapistSignupHandler(w http.ResponseWriter, r *http.Request) {
	e.signup(w, r, true)
}

func (e *AuthEndpoints) signup(w http.ResponseWriter, r *http.Request, therapist bool) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if therapist && req.Specialty == "" {
		http.Error(w, "specialty is required for therapist accounts", http.StatusBadRequest)
		return
	}

	var authResponse *AuthResponse
	var err error
	if therapist {
		authResponse, err = e.authService.SignupTherapist(r.Context(), req)
	} else {
		authResponse, err = e.authService.Signup(r.Context(), req)
	}
	if err != nil {
		slog.Error("Signup failed", "error", err, "username", req.Username)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken, authResponse.LongLivedToken)

	response := map[string]interface{}{
		"user":    userPayload(authResponse.User),
		"message": "Signup successful",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (e *AuthEndpoints) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	refreshToken := e.authService.GetTokenFromCookie(r, "refresh_token")
	if refreshToken == "" {
		http.Error(w, "No refresh token provided", http.StatusUnauthorized)
		return
	}

	authResponse, err := e.authService.RefreshAccess(r.Context(), refreshToken)
	if err != nil {
		slog.Error("Token refresh failed", "error", err)
		http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, "", "")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Token refreshed successfully",
	})
}

func (e *AuthEndpoints) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	if err := e.authService.Logout(r.Context(), user.ID); err != nil {
		slog.Error("Logout failed", "error", err, "user_id", user.ID)
		http.Error(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	e.authService.ClearAuthCookies(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Logout successful",
	})
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": userPayload(user),
	})
}

func (e *AuthEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if user.Role == models.RoleTherapist {
		if req.Specialty != "" {
			user.Specialty = req.Specialty
		}
		if req.Bio != "" {
			user.Bio = req.Bio
		}
		if req.Available != nil {
			user.Available = *req.Available
		}
	}

	if err := e.authService.store.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Profile update failed", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    userPayload(user),
		"message": "Profile updated",
	})
}

func (e *AuthEndpoints) DeactivateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	if err := e.authService.Deactivate(r.Context(), user.ID); err != nil {
		slog.Error("Deactivation failed", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to deactivate account", http.StatusInternalServerError)
		return
	}

	e.authService.ClearAuthCookies(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Account deactivated",
	})

	slog.Info("Account deactivated", "user_id", user.ID)
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", e.LoginHandler)
		r.Post("/signup", e.SignupHandler)
		r.Post("/signup/therapist", e.TherapistSignupHandler)
		r.Post("/refresh", e.RefreshHandler)
	})
}
