package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bridge-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ChatHistoryRepository manages assistant-conversation history in Redis.
type ChatHistoryRepository interface {
	GetOrCreateConversationID(ctx context.Context, userID uint) (string, error)
	GetHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error)
	UpdateHistory(ctx context.Context, conversationID string, messages []model.ChatMessage) error
}

type redisChatHistoryRepository struct {
	redisClient  *redis.Client
	historyLimit int
}

// NewChatHistoryRepository creates a new ChatHistoryRepository instance.
// historyLimit caps the stored history; zero means the default of 20.
func NewChatHistoryRepository(redisClient *redis.Client, historyLimit int) ChatHistoryRepository {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &redisChatHistoryRepository{redisClient: redisClient, historyLimit: historyLimit}
}

// GetOrCreateConversationID returns the user's current conversation id,
// creating one if none exists.
func (r *redisChatHistoryRepository) GetOrCreateConversationID(ctx context.Context, userID uint) (string, error) {
	userKey := fmt.Sprintf("user:%d:current_conversation", userID)
	convID, err := r.redisClient.Get(ctx, userKey).Result()
	if err == redis.Nil {
		convID = fmt.Sprintf("%d-%d", time.Now().UnixNano(), userID)
		if err := r.redisClient.Set(ctx, userKey, convID, 7*24*time.Hour).Err(); err != nil {
			return "", fmt.Errorf("failed to set conversation id: %w", err)
		}
		return convID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}
	return convID, nil
}

// GetHistory fetches the conversation history from Redis.
func (r *redisChatHistoryRepository) GetHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	key := fmt.Sprintf("chat:%s", conversationID)
	jsonData, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil // no history yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	var messages []model.ChatMessage
	err = json.Unmarshal([]byte(jsonData), &messages)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat history: %w", err)
	}
	return messages, nil
}

// UpdateHistory stores the conversation history, keeping only the most recent
// historyLimit messages.
func (r *redisChatHistoryRepository) UpdateHistory(ctx context.Context, conversationID string, messages []model.ChatMessage) error {
	key := fmt.Sprintf("chat:%s", conversationID)
	if len(messages) > r.historyLimit {
		messages = messages[len(messages)-r.historyLimit:]
	}
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	err = r.redisClient.Set(ctx, key, jsonData, 7*24*time.Hour).Err()
	if err != nil {
		return fmt.Errorf("failed to set chat history: %w", err)
	}
	return nil
}
