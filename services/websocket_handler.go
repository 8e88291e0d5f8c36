package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	ws "github.com/Amaan112005/mindmate/websocket"
)

// safeSend tries to send a message to the client channel, recovers if closed
func safeSend(ch chan<- []byte, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel is closed, ignore
		}
	}()
	select {
	case ch <- msg:
		// sent
	default:
		// channel full or closed
	}
}

type WebSocketHandler struct {
	chatEndpoints *ChatEndpoints
	geminiService *GeminiService
}

func NewWebSocketHandler(chatEndpoints *ChatEndpoints, geminiService *GeminiService) *WebSocketHandler {
	return &WebSocketHandler{
		chatEndpoints: chatEndpoints,
		geminiService: geminiService,
	}
}

// HandleWebSocketConnection greets the client once the connection is up.
func (h *WebSocketHandler) HandleWebSocketConnection(client *ws.Client) {
	slog.Info("WebSocket connection handled", "user_id", client.UserID, "chat_session_id", client.ChatSessionID)

	greeting := ws.Message{
		Type:      "assistant_message",
		Content:   "Hi, I'm here to listen. How are you feeling today?",
		SessionID: client.ChatSessionID,
	}
	if b, err := json.Marshal(greeting); err == nil {
		safeSend(client.Send, b)
	}
}

// HandleWebSocketMessage routes incoming messages through the same chat
// pipeline the REST endpoint uses.
func (h *WebSocketHandler) HandleWebSocketMessage(client *ws.Client, messageBytes []byte) {
	var msg ws.Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		slog.Error("Failed to unmarshal WebSocket message", "error", err)
		return
	}

	slog.Info("WebSocket message received", "type", msg.Type, "user_id", client.UserID)

	switch msg.Type {
	case "text":
		sessionID := msg.SessionID
		if sessionID == "" {
			sessionID = client.ChatSessionID
		}
		if sessionID == "" {
			h.sendError(client, "No chat session; start one first")
			return
		}
		client.ChatSessionID = sessionID

		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		result, err := h.chatEndpoints.ProcessMessage(ctx, client.UserID, sessionID, msg.Content)
		if err != nil {
			if errors.Is(err, ErrSessionNotActive) {
				h.sendError(client, "Chat session is not active")
				return
			}
			slog.Error("Failed to process WebSocket chat message", "error", err, "session_id", sessionID)
			h.sendError(client, "I'm having trouble responding right now. Please try again in a moment.")
			return
		}

		reply := ws.Message{
			Type:      "assistant_message",
			Content:   result.AssistantMessage.Content,
			SessionID: sessionID,
		}
		if b, err := json.Marshal(reply); err == nil {
			safeSend(client.Send, b)
		}

	case "end_session":
		slog.Info("Received end_session request", "user_id", client.UserID, "chat_session_id", client.ChatSessionID)
		if client.ChatSessionID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.chatEndpoints.store.EndChatSession(ctx, client.ChatSessionID); err != nil {
				slog.Error("Failed to end chat session", "error", err, "session_id", client.ChatSessionID)
			}
			if h.geminiService != nil {
				h.geminiService.EndChat(client.ChatSessionID)
			}
		}

		endMsg := ws.Message{
			Type:    "end_session",
			Content: "Take care of yourself. I'm here whenever you want to talk again.",
		}
		if b, err := json.Marshal(endMsg); err == nil {
			safeSend(client.Send, b)
		}
		// Close after a short delay so the farewell gets through
		go func() {
			<-time.After(200 * time.Millisecond)
			client.Conn.Close()
		}()

	default:
		slog.Warn("Unknown message type", "type", msg.Type, "user_id", client.UserID)
	}
}

func (h *WebSocketHandler) sendError(client *ws.Client, content string) {
	errMsg := ws.Message{
		Type:    "error",
		Content: content,
	}
	if b, err := json.Marshal(errMsg); err == nil {
		safeSend(client.Send, b)
	}
}
