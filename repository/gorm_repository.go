package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.TrackingEntry{},
		&models.JournalEntry{},
		&models.Goal{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.CareLink{},
		&models.SessionNote{},
		&models.TherapistRequest{},
		&models.CommunityPost{},
		&models.Resource{},
	)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return nil
}

func (r *GORMRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by username", "error", err, "username", username)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.ID)
		return err
	}
	return nil
}

func (r *GORMRepository) TouchLastLogin(ctx context.Context, userID string) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", now).Error; err != nil {
		slog.Error("Failed to update last login", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// DeactivateUser flips the soft-deactivation flag. Rows are kept for
// audit; authentication rejects deactivated users.
func (r *GORMRepository) DeactivateUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("deactivated", true).Error; err != nil {
		slog.Error("Failed to deactivate user", "error", err, "user_id", userID)
		return err
	}
	slog.Info("User deactivated", "user_id", userID)
	return nil
}

func (r *GORMRepository) GetAvailableTherapists(ctx context.Context, specialty string) ([]models.User, error) {
	var therapists []models.User
	query := r.db.WithContext(ctx).
		Where("role = ? AND available = ? AND deactivated = ?", models.RoleTherapist, true, false)
	if specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if err := query.Find(&therapists).Error; err != nil {
		slog.Error("Failed to get available therapists", "error", err)
		return nil, err
	}
	return therapists, nil
}

// Session operations
func (r *GORMRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create session", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetSessionByToken(ctx context.Context, hashedToken string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", hashedToken, time.Now()).
		First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get session", "error", err)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) DeleteAllUserSessions(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		slog.Error("Failed to delete user sessions", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteExpiredSessions(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.Session{}).Error; err != nil {
		slog.Error("Failed to delete expired sessions", "error", err)
		return err
	}
	return nil
}
