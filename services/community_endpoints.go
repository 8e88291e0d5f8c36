package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type CommunityStore interface {
	CreateCommunityPost(ctx context.Context, post *models.CommunityPost) error
	GetCommunityPosts(ctx context.Context, limit int) ([]models.CommunityPost, error)
	LikeCommunityPost(ctx context.Context, postID string) error
	GetResources(ctx context.Context, kind string) ([]models.Resource, error)
}

type CommunityEndpoints struct {
	store CommunityStore
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

func NewCommunityEndpoints(store CommunityStore) *CommunityEndpoints {
	return &CommunityEndpoints{store: store}
}

func (e *CommunityEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/community/posts", func(r chi.Router) {
		r.Post("/", e.CreatePostHandler)
		r.Get("/", e.GetPostsHandler)
		r.Post("/{id}/like", e.LikePostHandler)
	})
	r.Get("/resources", e.GetResourcesHandler)
}

func (e *CommunityEndpoints) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	if len(req.Content) > 2000 {
		http.Error(w, "content must be 2000 characters or less", http.StatusBadRequest)
		return
	}

	post := models.CommunityPost{
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := e.store.CreateCommunityPost(r.Context(), &post); err != nil {
		slog.Error("Failed to create post", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

func (e *CommunityEndpoints) GetPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			http.Error(w, "limit must be between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	posts, err := e.store.GetCommunityPosts(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to get posts", "error", err)
		http.Error(w, "Failed to get posts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

func (e *CommunityEndpoints) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if err := e.store.LikeCommunityPost(r.Context(), postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to like post", "error", err, "post_id", postID)
		http.Error(w, "Failed to like post", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *CommunityEndpoints) GetResourcesHandler(w http.ResponseWriter, r *http.Request) {
	resources, err := e.store.GetResources(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		slog.Error("Failed to get resources", "error", err)
		http.Error(w, "Failed to get resources", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}
