package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// GoalStore is the slice of the repository the goal endpoints need.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoals(ctx context.Context, userID string) ([]models.Goal, error)
	GetGoal(ctx context.Context, goalID, userID string) (*models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, goalID, userID string) error
}

type GoalEndpoints struct {
	store GoalStore
}

type CreateGoalRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	TargetDate  string `json:"target_date"` // YYYY-MM-DD
	TargetValue int    `json:"target_value"`
}

type UpdateProgressRequest struct {
	Progress int `json:"progress"`
}

func NewGoalEndpoints(store GoalStore) *GoalEndpoints {
	return &GoalEndpoints{store: store}
}

func (e *GoalEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Post("/", e.CreateGoalHandler)
		r.Get("/", e.GetGoalsHandler)
		r.Put("/{id}/progress", e.UpdateProgressHandler)
		r.Delete("/{id}", e.DeleteGoalHandler)
	})
}

func (e *GoalEndpoints) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.TargetValue < 1 {
		http.Error(w, "name and a positive target_value are required", http.StatusBadRequest)
		return
	}
	switch req.Type {
	case "mood", "sleep", "meditation", "journal":
	default:
		http.Error(w, "type must be one of mood, sleep, meditation, journal", http.StatusBadRequest)
		return
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		http.Error(w, "target_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if targetDate.Before(time.Now().Truncate(24 * time.Hour)) {
		http.Error(w, "target_date must not be in the past", http.StatusBadRequest)
		return
	}

	goal := models.Goal{
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		TargetDate:  targetDate,
		TargetValue: req.TargetValue,
	}

	if err := e.store.CreateGoal(r.Context(), &goal); err != nil {
		slog.Error("Failed to create goal", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create goal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(goal)
}

func (e *GoalEndpoints) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	goals, err := e.store.GetGoals(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get goals", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

func (e *GoalEndpoints) UpdateProgressHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Progress < 0 {
		http.Error(w, "progress must not be negative", http.StatusBadRequest)
		return
	}

	goalID := chi.URLParam(r, "id")
	goal, err := e.store.GetGoal(r.Context(), goalID, user.ID)
	if err != nil {
		slog.Error("Failed to get goal", "error", err, "goal_id", goalID)
		http.Error(w, "Failed to get goal", http.StatusInternalServerError)
		return
	}
	if goal == nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}

	goal.Progress = req.Progress
	if goal.Progress >= goal.TargetValue {
		goal.Completed = true
	}

	if err := e.store.UpdateGoal(r.Context(), goal); err != nil {
		slog.Error("Failed to update goal", "error", err, "goal_id", goalID)
		http.Error(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}

	slog.Info("Goal progress updated", "goal_id", goal.ID, "progress", goal.Progress, "completed", goal.Completed)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goal)
}

func (e *GoalEndpoints) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	goalID := chi.URLParam(r, "id")
	if err := e.store.DeleteGoal(r.Context(), goalID, user.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete goal", "error", err, "goal_id", goalID)
		http.Error(w, "Failed to delete goal", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
