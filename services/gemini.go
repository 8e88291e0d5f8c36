package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Amaan112005/mindmate/models"

	"google.golang.org/genai"
)

const (
	DefaultModelName       = "gemini-2.5-flash"
	MaxConversationTurns   = 20 // Maximum turns before summarization
	StaleChatTimeout       = 30 * time.Minute
	staleChatCheckInterval = 5 * time.Minute
)

// SystemPrompt defines the companion persona sent with every request.
const SystemPrompt = `You are MindMate, an empathetic and supportive mental health companion. Your role is to:
- Provide emotional support and understanding
- Listen actively and respond with empathy
- Offer constructive coping strategies and suggestions
- Encourage professional help when appropriate
- Maintain a safe and non-judgmental space
- Never provide medical diagnosis or replace professional mental health care
- Always respond in a warm, supportive manner
- Provide gentle guidance and reflection prompts

Remember to:
1. Prioritize user safety and well-being
2. Reference the conversation history when appropriate
3. Suggest activities tailored to what the user shares
4. Help them reflect on their emotional journey`

// crisisKeywords trigger the fixed crisis response instead of a model
// call. The user message is still recorded by the caller.
var crisisKeywords = []string{
	"suicide", "suicidal", "kill myself", "end my life", "self-harm",
	"self harm", "hurt myself", "no reason to live",
}

// CrisisResponse is returned verbatim when a crisis keyword is detected.
const CrisisResponse = `I'm really glad you told me, and I'm concerned about what you're going through. I'm not able to provide the help you need right now, but you don't have to face this alone.

If you're in crisis, please contact a licensed professional or emergency services immediately:
- National Suicide Prevention Lifeline: 988 (https://988lifeline.org/)
- Crisis Text Line: text HOME to 741741 (https://www.crisistextline.org/)
- International Association for Suicide Prevention: https://www.iasp.info/resources/Crisis_Centres/

Would you like to talk about what led you here while you reach out to one of them?`

// chatCache holds the rolling summary and turn count for one chat session.
type chatCache struct {
	ConversationSummary string
	TurnCount           int
	LastActivity        time.Time
}

// GeminiService handles all companion AI operations with per-chat
// summarization and stale-session cleanup.
type GeminiService struct {
	genaiClient *genai.Client
	modelName   string

	chatCaches map[string]*chatCache
	cacheMutex sync.RWMutex

	// OnStaleChat is invoked with the session ID when an idle chat is
	// evicted, so the caller can mark the session ended.
	OnStaleChat func(sessionID string)
}

func NewGeminiService(apiKey, modelName string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	if modelName == "" {
		modelName = DefaultModelName
	}

	service := &GeminiService{
		genaiClient: genaiClient,
		modelName:   modelName,
		chatCaches:  make(map[string]*chatCache),
	}

	// Background cleanup of idle chats
	go service.cleanupStaleChats()

	return service
}

// IsCrisisMessage reports whether the message contains a crisis keyword.
func IsCrisisMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (g *GeminiService) getOrCreateCache(sessionID string) *chatCache {
	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	if cache, exists := g.chatCaches[sessionID]; exists {
		cache.LastActivity = time.Now()
		return cache
	}

	cache := &chatCache{LastActivity: time.Now()}
	g.chatCaches[sessionID] = cache
	slog.Info("Created chat cache", "session_id", sessionID)
	return cache
}

// GenerateResponse produces the assistant reply for a user message given
// the stored conversation history.
func (g *GeminiService) GenerateResponse(ctx context.Context, sessionID string, history []models.ChatMessage, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	cache := g.getOrCreateCache(sessionID)

	// Summarize long conversations to bound prompt size
	if cache.TurnCount >= MaxConversationTurns {
		slog.Info("Conversation too long, creating summary", "session_id", sessionID, "turns", cache.TurnCount)
		if err := g.summarizeConversation(ctx, sessionID, history); err != nil {
			slog.Error("Failed to summarize conversation", "error", err, "session_id", sessionID)
			// Continue anyway with the full history
		}
	}

	contents := g.buildConversationContents(history, cache.ConversationSummary)

	if strings.TrimSpace(userMessage) != "" {
		contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("Hello", genai.RoleUser))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.modelName,
		contents,
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	response := result.Text()

	g.cacheMutex.Lock()
	cache.TurnCount++
	cache.LastActivity = time.Now()
	g.cacheMutex.Unlock()

	slog.Info("Generated companion response",
		"session_id", sessionID,
		"turns", cache.TurnCount,
		"response_length", len(response))

	return response, nil
}

// buildConversationContents converts stored messages to genai contents,
// prefixed by the rolling summary when one exists.
func (g *GeminiService) buildConversationContents(history []models.ChatMessage, summary string) []*genai.Content {
	var contents []*genai.Content

	if summary != "" {
		contents = append(contents, genai.NewContentFromText(
			fmt.Sprintf("Summary of the conversation so far: %s", summary),
			genai.RoleModel,
		))
		// Only replay the tail once a summary exists
		if len(history) > 6 {
			history = history[len(history)-6:]
		}
	}

	for _, message := range history {
		if message.Role == "assistant" {
			contents = append(contents, genai.NewContentFromText(message.Content, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(message.Content, genai.RoleUser))
		}
	}
	return contents
}

func (g *GeminiService) summarizeConversation(ctx context.Context, sessionID string, history []models.ChatMessage) error {
	var conversationText strings.Builder
	for _, message := range history {
		conversationText.WriteString(fmt.Sprintf("%s: %s\n", message.Role, message.Content))
	}

	summaryPrompt := fmt.Sprintf(`Summarize the following supportive conversation concisely, focusing on:
- What the user has been going through
- Coping strategies already suggested
- Recurring themes in their mood
- Anything that needs gentle follow-up

Conversation:
%s

Provide a clear, concise summary (max 500 words).`, conversationText.String())

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.modelName,
		genai.Text(summaryPrompt),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := result.Text()

	g.cacheMutex.Lock()
	if cache, exists := g.chatCaches[sessionID]; exists {
		cache.ConversationSummary = summary
		cache.TurnCount = 0
	}
	g.cacheMutex.Unlock()

	slog.Info("Updated chat cache with summary", "session_id", sessionID, "summary_length", len(summary))
	return nil
}

// EndChat drops the cache for a session.
func (g *GeminiService) EndChat(sessionID string) {
	g.cacheMutex.Lock()
	delete(g.chatCaches, sessionID)
	g.cacheMutex.Unlock()
}

func (g *GeminiService) cleanupStaleChats() {
	ticker := time.NewTicker(staleChatCheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		var stale []string
		g.cacheMutex.Lock()
		for sessionID, cache := range g.chatCaches {
			if time.Since(cache.LastActivity) > StaleChatTimeout {
				delete(g.chatCaches, sessionID)
				stale = append(stale, sessionID)
			}
		}
		g.cacheMutex.Unlock()

		for _, sessionID := range stale {
			slog.Info("Evicted stale chat cache", "session_id", sessionID)
			if g.OnStaleChat != nil {
				g.OnStaleChat(sessionID)
			}
		}
	}
}
