package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// TrackingStore is the slice of the repository the tracking endpoints need.
type TrackingStore interface {
	CreateTrackingEntry(ctx context.Context, entry *models.TrackingEntry) error
	GetTrackingEntries(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error)
	DeleteTrackingEntry(ctx context.Context, entryID, userID string) error
}

type TrackingEndpoints struct {
	store TrackingStore
	stats *StatsService
}

type CreateTrackingRequest struct {
	Category    string   `json:"category"`
	Value       float64  `json:"value"`
	Quality     *int     `json:"quality,omitempty"`
	SessionType string   `json:"session_type,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        string   `json:"tags,omitempty"`
	RecordedAt  *string  `json:"recorded_at,omitempty"` // RFC3339, defaults to now
}

type TrackingEntriesResponse struct {
	Entries []models.TrackingEntry `json:"entries"`
	Count   int                    `json:"count"`
}

func NewTrackingEndpoints(store TrackingStore, stats *StatsService) *TrackingEndpoints {
	return &TrackingEndpoints{store: store, stats: stats}
}

// invalidateStats drops the cached overview so the next read reflects
// the write.
func (e *TrackingEndpoints) invalidateStats(userID string) {
	if e.stats != nil {
		e.stats.Invalidate(userID)
	}
}

func (e *TrackingEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/tracking", func(r chi.Router) {
		r.Post("/", e.CreateEntryHandler)
		r.Get("/", e.GetEntriesHandler)
		r.Delete("/{id}", e.DeleteEntryHandler)
	})
}

// validateEntry enforces per-category value rules: mood score 1-10, sleep
// hours 0-24 with quality 1-10, meditation minutes 1-600.
func validateEntry(req *CreateTrackingRequest) error {
	switch req.Category {
	case models.CategoryMood:
		if req.Value < 1 || req.Value > 10 || req.Value != float64(int(req.Value)) {
			return fmt.Errorf("mood value must be an integer between 1 and 10")
		}
	case models.CategorySleep:
		if req.Value < 0 || req.Value > 24 {
			return fmt.Errorf("sleep hours must be between 0 and 24")
		}
		if req.Quality == nil || *req.Quality < 1 || *req.Quality > 10 {
			return fmt.Errorf("sleep quality must be between 1 and 10")
		}
	case models.CategoryMeditation:
		if req.Value < 1 || req.Value > 600 {
			return fmt.Errorf("meditation minutes must be between 1 and 600")
		}
	default:
		return fmt.Errorf("unknown category: %s", req.Category)
	}
	return nil
}

func (e *TrackingEndpoints) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateEntry(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.RecordedAt)
		if err != nil {
			http.Error(w, "recorded_at must be RFC3339", http.StatusBadRequest)
			return
		}
		recordedAt = parsed
	}

	entry := models.TrackingEntry{
		UserID:      user.ID,
		Category:    req.Category,
		Value:       req.Value,
		Quality:     req.Quality,
		SessionType: req.SessionType,
		Notes:       req.Notes,
		Tags:        req.Tags,
		RecordedAt:  recordedAt,
	}

	if err := e.store.CreateTrackingEntry(r.Context(), &entry); err != nil {
		slog.Error("Failed to create tracking entry", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}
	e.invalidateStats(user.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (e *TrackingEndpoints) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	category := r.URL.Query().Get("category")
	if category != "" && category != models.CategoryMood && category != models.CategorySleep && category != models.CategoryMeditation {
		http.Error(w, "Invalid category", http.StatusBadRequest)
		return
	}

	var since time.Time
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		since = time.Now().AddDate(0, 0, -days)
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := e.store.GetTrackingEntries(r.Context(), user.ID, category, since, limit)
	if err != nil {
		slog.Error("Failed to get tracking entries", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TrackingEntriesResponse{Entries: entries, Count: len(entries)})
}

func (e *TrackingEndpoints) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	entryID := chi.URLParam(r, "id")
	if err := e.store.DeleteTrackingEntry(r.Context(), entryID, user.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete tracking entry", "error", err, "entry_id", entryID)
		http.Error(w, "Failed to delete entry", http.StatusInternalServerError)
		return
	}
	e.invalidateStats(user.ID)

	w.WriteHeader(http.StatusNoContent)
}
