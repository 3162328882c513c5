package model

import "time"

// ChatMessage is a single assistant-conversation message stored in Redis.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
