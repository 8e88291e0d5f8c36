package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

// CategoryAggregate is the aggregate row the stats layer builds its
// overview from: overall average and count plus the average over the most
// recent seven days.
type CategoryAggregate struct {
	Average       float64 `json:"average"`
	Count         int64   `json:"count"`
	RecentAverage float64 `json:"recent_average"`
	Total         float64 `json:"total"`
}

// DailyPoint is one day of a chart-ready series. Average is nil for days
// without entries so charts can render gaps.
type DailyPoint struct {
	Date    string   `json:"date"`
	Average *float64 `json:"value"`
	Count   int64    `json:"count"`
}

func (r *GORMRepository) CreateTrackingEntry(ctx context.Context, entry *models.TrackingEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		slog.Error("Failed to create tracking entry", "error", err, "category", entry.Category)
		return err
	}
	slog.Info("Tracking entry created", "entry_id", entry.ID, "user_id", entry.UserID, "category", entry.Category)
	return nil
}

func (r *GORMRepository) GetTrackingEntries(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error) {
	var entries []models.TrackingEntry
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if !since.IsZero() {
		query = query.Where("recorded_at >= ?", since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("recorded_at DESC").Find(&entries).Error; err != nil {
		slog.Error("Failed to get tracking entries", "error", err, "user_id", userID, "category", category)
		return nil, err
	}
	return entries, nil
}

func (r *GORMRepository) DeleteTrackingEntry(ctx context.Context, entryID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.TrackingEntry{})
	if result.Error != nil {
		slog.Error("Failed to delete tracking entry", "error", result.Error, "entry_id", entryID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	slog.Info("Tracking entry deleted", "entry_id", entryID, "user_id", userID)
	return nil
}

// GetCategoryAggregate computes overview numbers for one category. The
// recent average covers the last seven days so callers can report change
// against the overall average.
func (r *GORMRepository) GetCategoryAggregate(ctx context.Context, userID, category string) (*CategoryAggregate, error) {
	var agg CategoryAggregate
	err := r.db.WithContext(ctx).Model(&models.TrackingEntry{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total").
		Where("user_id = ? AND category = ?", userID, category).
		Scan(&agg).Error
	if err != nil {
		slog.Error("Failed to aggregate tracking entries", "error", err, "user_id", userID, "category", category)
		return nil, err
	}

	var recent struct{ Average float64 }
	err = r.db.WithContext(ctx).Model(&models.TrackingEntry{}).
		Select("COALESCE(AVG(value), 0) AS average").
		Where("user_id = ? AND category = ? AND recorded_at >= ?", userID, category, time.Now().AddDate(0, 0, -7)).
		Scan(&recent).Error
	if err != nil {
		slog.Error("Failed to aggregate recent tracking entries", "error", err, "user_id", userID, "category", category)
		return nil, err
	}
	agg.RecentAverage = recent.Average
	return &agg, nil
}

// GetDailyAverages returns per-day averages for one category since the
// given date, oldest first. Days without entries are absent; the stats
// layer fills the gaps.
func (r *GORMRepository) GetDailyAverages(ctx context.Context, userID, category string, since time.Time) ([]DailyPoint, error) {
	type row struct {
		Day     time.Time
		Average float64
		Count   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.TrackingEntry{}).
		Select("DATE(recorded_at) AS day, AVG(value) AS average, COUNT(*) AS count").
		Where("user_id = ? AND category = ? AND recorded_at >= ?", userID, category, since).
		Group("DATE(recorded_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		slog.Error("Failed to get daily averages", "error", err, "user_id", userID, "category", category)
		return nil, err
	}

	points := make([]DailyPoint, 0, len(rows))
	for _, rw := range rows {
		avg := rw.Average
		points = append(points, DailyPoint{
			Date:    rw.Day.Format("2006-01-02"),
			Average: &avg,
			Count:   rw.Count,
		})
	}
	return points, nil
}

// CountAverageQuality returns the average sleep quality for the overview.
func (r *GORMRepository) GetAverageQuality(ctx context.Context, userID string) (float64, error) {
	var result struct{ Average float64 }
	err := r.db.WithContext(ctx).Model(&models.TrackingEntry{}).
		Select("COALESCE(AVG(quality), 0) AS average").
		Where("user_id = ? AND category = ? AND quality IS NOT NULL", userID, models.CategorySleep).
		Scan(&result).Error
	if err != nil {
		slog.Error("Failed to get average sleep quality", "error", err, "user_id", userID)
		return 0, err
	}
	return result.Average, nil
}
