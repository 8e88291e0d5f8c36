package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/Amaan112005/mindmate/repository"
	"github.com/go-chi/chi/v5"
)

const statsCacheTTL = 5 * time.Minute

// StatsStore is the slice of the repository the stats service needs. All
// methods are reads; the reporting layer never writes tracked data.
type StatsStore interface {
	GetCategoryAggregate(ctx context.Context, userID, category string) (*repository.CategoryAggregate, error)
	GetDailyAverages(ctx context.Context, userID, category string, since time.Time) ([]repository.DailyPoint, error)
	GetAverageQuality(ctx context.Context, userID string) (float64, error)
	GetJournalStats(ctx context.Context, userID string) (*models.JournalStats, error)
}

// Overview is the chart-ready aggregate bundle for one user.
type Overview struct {
	Mood struct {
		Average float64 `json:"average"`
		Count   int64   `json:"count"`
		Change  float64 `json:"change"` // Recent 7-day average minus overall average
	} `json:"mood"`
	Sleep struct {
		Hours   float64 `json:"hours"`
		Quality float64 `json:"quality"`
		Count   int64   `json:"count"`
		Change  float64 `json:"change"`
	} `json:"sleep"`
	Meditation struct {
		Sessions     int64   `json:"sessions"`
		TotalMinutes float64 `json:"total_minutes"`
	} `json:"meditation"`
	Journal   *models.JournalStats `json:"journal"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// StatsService aggregates tracked entries into chart-ready series with a
// short-lived per-user cache.
type StatsService struct {
	store StatsStore

	cache      map[string]*Overview
	cacheMutex sync.RWMutex
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{
		store: store,
		cache: make(map[string]*Overview),
	}
}

// GetOverview returns the cached overview when fresh, otherwise rebuilds.
func (s *StatsService) GetOverview(ctx context.Context, userID string) (*Overview, error) {
	s.cacheMutex.RLock()
	cached, ok := s.cache[userID]
	s.cacheMutex.RUnlock()
	if ok && time.Since(cached.UpdatedAt) < statsCacheTTL {
		return cached, nil
	}

	overview, err := s.buildOverview(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cacheMutex.Lock()
	s.cache[userID] = overview
	s.cacheMutex.Unlock()
	return overview, nil
}

// Invalidate drops the cached overview for a user.
func (s *StatsService) Invalidate(userID string) {
	s.cacheMutex.Lock()
	delete(s.cache, userID)
	s.cacheMutex.Unlock()
}

func (s *StatsService) buildOverview(ctx context.Context, userID string) (*Overview, error) {
	var overview Overview

	mood, err := s.store.GetCategoryAggregate(ctx, userID, models.CategoryMood)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate mood: %w", err)
	}
	overview.Mood.Average = mood.Average
	overview.Mood.Count = mood.Count
	if mood.Count > 0 {
		overview.Mood.Change = mood.RecentAverage - mood.Average
	}

	sleep, err := s.store.GetCategoryAggregate(ctx, userID, models.CategorySleep)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sleep: %w", err)
	}
	overview.Sleep.Hours = sleep.Average
	overview.Sleep.Count = sleep.Count
	if sleep.Count > 0 {
		overview.Sleep.Change = sleep.RecentAverage - sleep.Average
	}

	quality, err := s.store.GetAverageQuality(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sleep quality: %w", err)
	}
	overview.Sleep.Quality = quality

	meditation, err := s.store.GetCategoryAggregate(ctx, userID, models.CategoryMeditation)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate meditation: %w", err)
	}
	overview.Meditation.Sessions = meditation.Count
	overview.Meditation.TotalMinutes = meditation.Total

	journal, err := s.store.GetJournalStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal stats: %w", err)
	}
	overview.Journal = journal

	overview.UpdatedAt = time.Now()
	return &overview, nil
}

// GetSeries returns a dense daily series for a category over the last
// `days` days, with nil values where nothing was tracked.
func (s *StatsService) GetSeries(ctx context.Context, userID, category string, days int) ([]repository.DailyPoint, error) {
	end := time.Now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	points, err := s.store.GetDailyAverages(ctx, userID, category, start)
	if err != nil {
		return nil, fmt.Errorf("failed to build series: %w", err)
	}
	return FillDailyGaps(points, start, end), nil
}

type StatsEndpoints struct {
	statsService *StatsService
}

func NewStatsEndpoints(statsService *StatsService) *StatsEndpoints {
	return &StatsEndpoints{statsService: statsService}
}

func (e *StatsEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/overview", e.OverviewHandler)
		r.Get("/mood-trends", e.MoodTrendsHandler)
		r.Get("/series", e.SeriesHandler)
	})
}

func (e *StatsEndpoints) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	overview, err := e.statsService.GetOverview(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to build stats overview", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to build overview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(overview)
}

func (e *StatsEndpoints) MoodTrendsHandler(w http.ResponseWriter, r *http.Request) {
	e.serveSeries(w, r, models.CategoryMood)
}

func (e *StatsEndpoints) SeriesHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	switch category {
	case models.CategoryMood, models.CategorySleep, models.CategoryMeditation:
	default:
		http.Error(w, "Invalid category", http.StatusBadRequest)
		return
	}
	e.serveSeries(w, r, category)
}

func (e *StatsEndpoints) serveSeries(w http.ResponseWriter, r *http.Request, category string) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > 365 {
			http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	series, err := e.statsService.GetSeries(r.Context(), user.ID, category, days)
	if err != nil {
		slog.Error("Failed to build series", "error", err, "user_id", user.ID, "category", category)
		http.Error(w, "Failed to build series", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"category": category,
		"days":     days,
		"points":   series,
	})
}
