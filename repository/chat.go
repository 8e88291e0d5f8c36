package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

func (r *GORMRepository) CreateChatSession(ctx context.Context, session *models.ChatSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create chat session", "error", err)
		return err
	}
	slog.Info("Chat session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

func (r *GORMRepository) GetChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&sessions).Error; err != nil {
		slog.Error("Failed to get chat sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

func (r *GORMRepository) GetChatSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("turn_order")
		}).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) EndChatSession(ctx context.Context, sessionID string) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.ChatSession{}).
		Where("id = ? AND status = ?", sessionID, "active").
		Updates(map[string]interface{}{"status": "ended", "ended_at": now}).Error; err != nil {
		slog.Error("Failed to end chat session", "error", err, "session_id", sessionID)
		return err
	}
	slog.Info("Chat session ended", "session_id", sessionID)
	return nil
}

func (r *GORMRepository) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to create chat message", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("turn_order").
		Find(&messages).Error; err != nil {
		slog.Error("Failed to get chat messages", "error", err, "session_id", sessionID)
		return nil, err
	}
	return messages, nil
}

// NextTurnOrder returns the turn order for the next message in a session.
func (r *GORMRepository) NextTurnOrder(ctx context.Context, sessionID string) (int, error) {
	var max struct{ Max int }
	err := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Select("COALESCE(MAX(turn_order), 0) AS max").
		Where("session_id = ?", sessionID).
		Scan(&max).Error
	if err != nil {
		slog.Error("Failed to get next turn order", "error", err, "session_id", sessionID)
		return 0, err
	}
	return max.Max + 1, nil
}
