package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TherapeuticModule is a discrete self-help tool offered by the platform.
// The dispatcher routes a start request to the module's starter.
type TherapeuticModule struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StartResult is what a module hands back to the client when started.
type StartResult struct {
	Module  string      `json:"module"`
	Payload interface{} `json:"payload"`
}

type moduleStarter func(ctx context.Context, user *models.User) (*StartResult, error)

// ModuleStore is the slice of the repository the module starters need.
type ModuleStore interface {
	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	CreateTrackingEntry(ctx context.Context, entry *models.TrackingEntry) error
}

// ModuleDispatcher holds the fixed registry of therapeutic modules.
type ModuleDispatcher struct {
	modules  []TherapeuticModule
	starters map[string]moduleStarter
}

// Journaling prompts rotated by day so repeat visits vary.
var reflectionPrompts = []string{
	"What is one thing you are grateful for today?",
	"Describe a moment today when you felt at ease.",
	"What has been weighing on you this week?",
	"What would you tell a friend who felt the way you do right now?",
	"What small step could you take tomorrow to care for yourself?",
}

type meditationScript struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Focus   string `json:"focus"`
}

// Guided meditation scripts offered by the meditation starter. The
// featured script rotates by day like the journaling prompts.
var meditationScripts = []meditationScript{
	{Name: "Box Breathing", Minutes: 5, Focus: "breath"},
	{Name: "Body Scan", Minutes: 10, Focus: "body"},
	{Name: "Loving Kindness", Minutes: 15, Focus: "compassion"},
}

func NewModuleDispatcher(store ModuleStore, stats *StatsService) *ModuleDispatcher {
	d := &ModuleDispatcher{
		modules: []TherapeuticModule{
			{Name: "journaling", Title: "Journaling", Description: "Guided self-reflection with writing prompts"},
			{Name: "guided_meditation", Title: "Guided Meditation", Description: "Breathing and mindfulness sessions"},
			{Name: "ai_chat", Title: "AI Companion", Description: "A supportive conversation with the MindMate companion"},
		},
		starters: make(map[string]moduleStarter),
	}

	d.starters["journaling"] = func(ctx context.Context, user *models.User) (*StartResult, error) {
		prompt := reflectionPrompts[time.Now().YearDay()%len(reflectionPrompts)]
		return &StartResult{
			Module: "journaling",
			Payload: map[string]interface{}{
				"prompt": prompt,
			},
		}, nil
	}

	d.starters["guided_meditation"] = func(ctx context.Context, user *models.User) (*StartResult, error) {
		featured := meditationScripts[time.Now().YearDay()%len(meditationScripts)]

		// Starting a guided session logs it, the same way ai_chat logs
		// its session record.
		entry := models.TrackingEntry{
			UserID:      user.ID,
			Category:    models.CategoryMeditation,
			Value:       float64(featured.Minutes),
			SessionType: featured.Name,
			Notes:       "Guided session",
			RecordedAt:  time.Now(),
		}
		if err := store.CreateTrackingEntry(ctx, &entry); err != nil {
			return nil, err
		}
		if stats != nil {
			stats.Invalidate(user.ID)
		}

		return &StartResult{
			Module: "guided_meditation",
			Payload: map[string]interface{}{
				"scripts":  meditationScripts,
				"featured": featured,
				"entry":    entry,
			},
		}, nil
	}

	d.starters["ai_chat"] = func(ctx context.Context, user *models.User) (*StartResult, error) {
		session := models.ChatSession{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Status:    "active",
			StartedAt: time.Now(),
		}
		if err := store.CreateChatSession(ctx, &session); err != nil {
			return nil, err
		}
		return &StartResult{
			Module: "ai_chat",
			Payload: map[string]interface{}{
				"session": session,
			},
		}, nil
	}

	return d
}

// List returns the fixed module registry.
func (d *ModuleDispatcher) List() []TherapeuticModule {
	return d.modules
}

// Start routes to the named module's starter. Unknown names return ok=false.
func (d *ModuleDispatcher) Start(ctx context.Context, name string, user *models.User) (*StartResult, bool, error) {
	starter, ok := d.starters[name]
	if !ok {
		return nil, false, nil
	}
	result, err := starter(ctx, user)
	return result, true, err
}

type ModuleEndpoints struct {
	dispatcher *ModuleDispatcher
}

func NewModuleEndpoints(dispatcher *ModuleDispatcher) *ModuleEndpoints {
	return &ModuleEndpoints{dispatcher: dispatcher}
}

func (e *ModuleEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/modules", func(r chi.Router) {
		r.Get("/", e.ListModulesHandler)
		r.Post("/{name}/start", e.StartModuleHandler)
	})
}

func (e *ModuleEndpoints) ListModulesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"modules": e.dispatcher.List(),
	})
}

func (e *ModuleEndpoints) StartModuleHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	name := chi.URLParam(r, "name")
	result, found, err := e.dispatcher.Start(r.Context(), name, user)
	if err != nil {
		slog.Error("Failed to start module", "error", err, "module", name, "user_id", user.ID)
		http.Error(w, "Failed to start module", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Module not found", http.StatusNotFound)
		return
	}

	slog.Info("Module started", "module", name, "user_id", user.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
