package repository

import (
	"context"
	"log/slog"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

// Journal operations
func (r *GORMRepository) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		slog.Error("Failed to create journal entry", "error", err)
		return err
	}
	slog.Info("Journal entry created", "entry_id", entry.ID, "user_id", entry.UserID)
	return nil
}

func (r *GORMRepository) GetJournalEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		slog.Error("Failed to get journal entries", "error", err, "user_id", userID)
		return nil, err
	}
	return entries, nil
}

func (r *GORMRepository) DeleteJournalEntry(ctx context.Context, entryID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.JournalEntry{})
	if result.Error != nil {
		slog.Error("Failed to delete journal entry", "error", result.Error, "entry_id", entryID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GORMRepository) GetJournalStats(ctx context.Context, userID string) (*models.JournalStats, error) {
	var stats models.JournalStats
	err := r.db.WithContext(ctx).Model(&models.JournalEntry{}).
		Select("COUNT(*) AS total_entries, COALESCE(AVG(mood_score), 0) AS avg_mood, MAX(created_at) AS last_entry").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		slog.Error("Failed to get journal stats", "error", err, "user_id", userID)
		return nil, err
	}
	return &stats, nil
}

// Goal operations
func (r *GORMRepository) CreateGoal(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		slog.Error("Failed to create goal", "error", err)
		return err
	}
	slog.Info("Goal created", "goal_id", goal.ID, "user_id", goal.UserID, "type", goal.Type)
	return nil
}

func (r *GORMRepository) GetGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("target_date").
		Find(&goals).Error; err != nil {
		slog.Error("Failed to get goals", "error", err, "user_id", userID)
		return nil, err
	}
	return goals, nil
}

func (r *GORMRepository) GetGoal(ctx context.Context, goalID, userID string) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get goal", "error", err, "goal_id", goalID)
		return nil, err
	}
	return &goal, nil
}

func (r *GORMRepository) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Save(goal).Error; err != nil {
		slog.Error("Failed to update goal", "error", err, "goal_id", goal.ID)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteGoal(ctx context.Context, goalID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.Goal{})
	if result.Error != nil {
		slog.Error("Failed to delete goal", "error", result.Error, "goal_id", goalID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
