package model

import "time"

// Conversation corresponds to the 'conversations' table. It links a resident
// and a staff member, optionally tied to a service record.
type Conversation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ResidentID  uint      `gorm:"index;not null" json:"residentId"`
	StaffID     uint      `gorm:"index;not null" json:"staffId"`
	ServiceID   uint      `gorm:"index" json:"serviceId"`
	LastMessage string    `gorm:"type:text" json:"lastMessage"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// DirectMessage corresponds to the 'messages' table.
type DirectMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	SenderID       uint      `gorm:"index;not null" json:"senderId"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	Read           bool      `gorm:"default:false" json:"read"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (DirectMessage) TableName() string {
	return "messages"
}
