package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatStore is the slice of the repository the chat endpoints need.
type ChatStore interface {
	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	GetChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error)
	GetChatSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error)
	EndChatSession(ctx context.Context, sessionID string) error
	CreateChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	NextTurnOrder(ctx context.Context, sessionID string) (int, error)
}

type ChatEndpoints struct {
	store         ChatStore
	geminiService *GeminiService
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	UserMessage      models.ChatMessage `json:"user_message"`
	AssistantMessage models.ChatMessage `json:"assistant_message"`
}

func NewChatEndpoints(store ChatStore, geminiService *GeminiService) *ChatEndpoints {
	return &ChatEndpoints{
		store:         store,
		geminiService: geminiService,
	}
}

func (e *ChatEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/chat/sessions", func(r chi.Router) {
		r.Post("/", e.CreateSessionHandler)
		r.Get("/", e.GetSessionsHandler)
		r.Get("/{id}", e.GetSessionHandler)
		r.Post("/{id}/end", e.EndSessionHandler)
		r.Post("/{id}/messages", e.SendMessageHandler)
	})
}

func (e *ChatEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	session := models.ChatSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Status:    "active",
		StartedAt: time.Now(),
	}

	if err := e.store.CreateChatSession(r.Context(), &session); err != nil {
		slog.Error("Failed to create chat session", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
		"message": "Session created successfully",
	})
}

func (e *ChatEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessions, err := e.store.GetChatSessions(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get chat sessions", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (e *ChatEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.store.GetChatSession(r.Context(), sessionID, user.ID)
	if err != nil {
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
	})
}

func (e *ChatEndpoints) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.store.GetChatSession(r.Context(), sessionID, user.ID)
	if err != nil {
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := e.store.EndChatSession(r.Context(), sessionID); err != nil {
		slog.Error("Failed to end chat session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to end session", http.StatusInternalServerError)
		return
	}
	if e.geminiService != nil {
		e.geminiService.EndChat(sessionID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Session ended",
	})
}

// ProcessMessage stores the user turn, obtains the assistant reply and
// stores it. Shared by the REST handler and the websocket path.
func (e *ChatEndpoints) ProcessMessage(ctx context.Context, userID, sessionID, content string) (*SendMessageResponse, error) {
	session, err := e.store.GetChatSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Status != "active" {
		return nil, ErrSessionNotActive
	}

	turn, err := e.store.NextTurnOrder(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	crisis := IsCrisisMessage(content)

	// Fetch history before storing the new turn so the prompt carries the
	// current message exactly once.
	var history []models.ChatMessage
	if !crisis && e.geminiService != nil {
		history, err = e.store.GetChatMessages(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}

	userMessage := models.ChatMessage{
		SessionID: sessionID,
		TurnOrder: turn,
		Role:      "user",
		Content:   content,
	}
	if err := e.store.CreateChatMessage(ctx, &userMessage); err != nil {
		return nil, err
	}

	// Crisis messages short-circuit to the fixed resource response; the
	// user turn above is still recorded.
	var reply string
	if crisis {
		slog.Warn("Crisis message detected", "session_id", sessionID, "user_id", userID)
		reply = CrisisResponse
	} else if e.geminiService != nil {
		reply, err = e.geminiService.GenerateResponse(ctx, sessionID, history, content)
		if err != nil {
			slog.Error("AI bridge failed", "error", err, "session_id", sessionID)
			return nil, ErrBridgeUnavailable
		}
	} else {
		return nil, ErrBridgeUnavailable
	}

	assistantMessage := models.ChatMessage{
		SessionID: sessionID,
		TurnOrder: turn + 1,
		Role:      "assistant",
		Content:   reply,
	}
	if err := e.store.CreateChatMessage(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	return &SendMessageResponse{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

func (e *ChatEndpoints) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	sessionID := chi.URLParam(r, "id")
	response, err := e.ProcessMessage(r.Context(), user.ID, sessionID, req.Content)
	if err != nil {
		switch err {
		case ErrSessionNotActive:
			http.Error(w, "Session not found or not active", http.StatusNotFound)
		case ErrBridgeUnavailable:
			http.Error(w, "The companion is unavailable right now, please try again in a moment", http.StatusBadGateway)
		default:
			slog.Error("Failed to process chat message", "error", err, "session_id", sessionID)
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
