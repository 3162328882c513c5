package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bridge-go/internal/config"
	"bridge-go/internal/model"
	"bridge-go/internal/repository"
	"bridge-go/pkg/gemini"
	"bridge-go/pkg/log"

	"github.com/gorilla/websocket"
)

// ChatService drives the directory assistant: a streamed conversation whose
// system prompt embeds the full service catalog so the model can point
// residents at concrete organizations.
type ChatService interface {
	StreamResponse(ctx context.Context, query string, user *model.User, ws *websocket.Conn, shouldStop func() bool) error
}

type chatService struct {
	serviceRepo repository.ServiceRepository
	llmClient   gemini.Client
	historyRepo repository.ChatHistoryRepository
}

// NewChatService creates a new ChatService instance.
func NewChatService(serviceRepo repository.ServiceRepository, llmClient gemini.Client, historyRepo repository.ChatHistoryRepository) ChatService {
	return &chatService{
		serviceRepo: serviceRepo,
		llmClient:   llmClient,
		historyRepo: historyRepo,
	}
}

// StreamResponse composes the prompt, streams the model's answer over the
// websocket, then reports mentioned services and persists the exchange.
func (s *chatService) StreamResponse(ctx context.Context, query string, user *model.User, ws *websocket.Conn, shouldStop func() bool) error {
	// 1. Load the catalog; the assistant only recommends what the directory holds.
	services, err := s.serviceRepo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to load service catalog: %w", err)
	}

	// 2. Build the system message and conversation history.
	systemMsg := s.buildSystemMessage(services)
	history, err := s.loadHistory(ctx, user.ID)
	if err != nil {
		log.Errorf("failed to load chat history: %v", err)
		history = []model.ChatMessage{}
	}
	messages := composeMessages(systemMsg, history, query)

	// Intercept the websocket writer to capture the full answer while
	// wrapping each chunk as JSON for the client.
	answerBuilder := &strings.Builder{}
	interceptor := &wsWriterInterceptor{conn: ws, writer: answerBuilder, shouldStop: shouldStop}

	// 3. Stream the completion.
	var llmMsgs []gemini.Message
	for _, m := range messages {
		llmMsgs = append(llmMsgs, gemini.Message{Role: m.Role, Content: m.Content})
	}
	if err := s.llmClient.StreamChat(ctx, llmMsgs, interceptor); err != nil {
		return err
	}

	// 4. Tell the client which catalog services the answer mentioned, then
	// signal completion.
	fullAnswer := answerBuilder.String()
	sendMentionedServices(ws, fullAnswer, services)
	sendCompletion(ws)

	if len(fullAnswer) > 0 {
		// Background context: a cancelled request should not lose an answer
		// that was fully generated.
		if err := s.appendToHistory(context.Background(), user.ID, query, fullAnswer); err != nil {
			log.Errorf("failed to save chat history: %v", err)
		}
	}

	return nil
}

// buildSystemMessage embeds the assistant rules and the catalog summary.
func (s *chatService) buildSystemMessage(services []model.ServiceRecord) string {
	rules := config.Conf.Chat.Rules
	if rules == "" {
		rules = "You are a helpful assistant for Bridge, which connects New York City residents to essential social services. " +
			"Recommend relevant services from the directory below, be specific about which service to use and why, " +
			"be empathetic and supportive, keep responses concise, and always mention service names exactly as listed."
	}

	var sb strings.Builder
	sb.WriteString(rules)
	sb.WriteString("\n\nAvailable services in our directory:\n")
	for _, svc := range services {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n  Address: %s\n  Phone: %s\n",
			svc.Name, svc.Category, svc.Description, svc.Address, svc.Phone))
	}
	return sb.String()
}

func (s *chatService) loadHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error) {
	convID, err := s.historyRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.historyRepo.GetHistory(ctx, convID)
}

func composeMessages(systemMsg string, history []model.ChatMessage, userInput string) []model.ChatMessage {
	msgs := make([]model.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, model.ChatMessage{Role: "user", Content: systemMsg})
	msgs = append(msgs, history...)
	msgs = append(msgs, model.ChatMessage{Role: "user", Content: userInput})
	return msgs
}

// appendToHistory adds the question and answer to the Redis conversation.
func (s *chatService) appendToHistory(ctx context.Context, userID uint, question, answer string) error {
	conversationID, err := s.historyRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get or create conversation ID: %w", err)
	}

	history, err := s.historyRepo.GetHistory(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	history = append(history, model.ChatMessage{
		Role:      "user",
		Content:   question,
		Timestamp: time.Now(),
	})
	history = append(history, model.ChatMessage{
		Role:      "assistant",
		Content:   answer,
		Timestamp: time.Now(),
	})

	return s.historyRepo.UpdateHistory(ctx, conversationID, history)
}

// wsWriterInterceptor wraps a websocket.Conn to capture written chunks.
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	writer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage satisfies the gemini.MessageWriter interface.
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// Stop flag set: drop further chunks.
		return nil
	}
	w.writer.Write(data)
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

// sendMentionedServices reports catalog records named in the answer so the
// client can highlight them. Matching is case-insensitive containment.
func sendMentionedServices(ws *websocket.Conn, answer string, services []model.ServiceRecord) {
	answerLower := strings.ToLower(answer)
	var ids []uint
	for _, svc := range services {
		if strings.Contains(answerLower, strings.ToLower(svc.Name)) {
			ids = append(ids, svc.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	payload := map[string]interface{}{"type": "services", "ids": ids}
	b, _ := json.Marshal(payload)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}

// sendCompletion sends the end-of-response notification.
func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"timestamp": time.Now().UnixMilli(),
		"date":      time.Now().Format("2006-01-02T15:04:05"),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
