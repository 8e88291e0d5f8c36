package repository

import (
	"context"
	"log/slog"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

func (r *GORMRepository) CreateCommunityPost(ctx context.Context, post *models.CommunityPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		slog.Error("Failed to create community post", "error", err)
		return err
	}
	slog.Info("Community post created", "post_id", post.ID, "user_id", post.UserID)
	return nil
}

func (r *GORMRepository) GetCommunityPosts(ctx context.Context, limit int) ([]models.CommunityPost, error) {
	var posts []models.CommunityPost
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		slog.Error("Failed to get community posts", "error", err)
		return nil, err
	}
	return posts, nil
}

func (r *GORMRepository) LikeCommunityPost(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		slog.Error("Failed to like community post", "error", result.Error, "post_id", postID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GORMRepository) CreateResource(ctx context.Context, resource *models.Resource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		slog.Error("Failed to create resource", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetResources(ctx context.Context, kind string) ([]models.Resource, error) {
	var resources []models.Resource
	query := r.db.WithContext(ctx).Order("rating DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&resources).Error; err != nil {
		slog.Error("Failed to get resources", "error", err)
		return nil, err
	}
	return resources, nil
}

func (r *GORMRepository) GetResourceByName(ctx context.Context, name string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&resource).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get resource", "error", err, "name", name)
		return nil, err
	}
	return &resource, nil
}
