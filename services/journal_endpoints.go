package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// JournalStore is the slice of the repository the journal endpoints need.
type JournalStore interface {
	CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	GetJournalEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, entryID, userID string) error
	GetJournalStats(ctx context.Context, userID string) (*models.JournalStats, error)
}

type JournalEndpoints struct {
	store JournalStore
	stats *StatsService
}

type CreateJournalRequest struct {
	EntryType string   `json:"entry_type,omitempty"`
	Content   string   `json:"content"`
	MoodScore *float64 `json:"mood_score,omitempty"` // Derived from content when absent
}

func NewJournalEndpoints(store JournalStore, stats *StatsService) *JournalEndpoints {
	return &JournalEndpoints{store: store, stats: stats}
}

func (e *JournalEndpoints) invalidateStats(userID string) {
	if e.stats != nil {
		e.stats.Invalidate(userID)
	}
}

func (e *JournalEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/journal", func(r chi.Router) {
		r.Post("/", e.CreateEntryHandler)
		r.Get("/", e.GetEntriesHandler)
		r.Get("/stats", e.GetStatsHandler)
		r.Delete("/{id}", e.DeleteEntryHandler)
	})
}

func (e *JournalEndpoints) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	moodScore := AnalyzeMood(req.Content)
	if req.MoodScore != nil {
		if *req.MoodScore < -1 || *req.MoodScore > 1 {
			http.Error(w, "mood_score must be between -1 and 1", http.StatusBadRequest)
			return
		}
		moodScore = *req.MoodScore
	}

	entryType := req.EntryType
	if entryType == "" {
		entryType = "free_form"
	}

	entry := models.JournalEntry{
		UserID:    user.ID,
		EntryType: entryType,
		Content:   req.Content,
		MoodScore: moodScore,
		Keywords:  strings.Join(DetectKeywords(req.Content), ","),
	}

	if err := e.store.CreateJournalEntry(r.Context(), &entry); err != nil {
		slog.Error("Failed to create journal entry", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}
	e.invalidateStats(user.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (e *JournalEndpoints) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := e.store.GetJournalEntries(r.Context(), user.ID, limit)
	if err != nil {
		slog.Error("Failed to get journal entries", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func (e *JournalEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	stats, err := e.store.GetJournalStats(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get journal stats", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (e *JournalEndpoints) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	entryID := chi.URLParam(r, "id")
	if err := e.store.DeleteJournalEntry(r.Context(), entryID, user.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete journal entry", "error", err, "entry_id", entryID)
		http.Error(w, "Failed to delete entry", http.StatusInternalServerError)
		return
	}
	e.invalidateStats(user.ID)

	w.WriteHeader(http.StatusNoContent)
}
