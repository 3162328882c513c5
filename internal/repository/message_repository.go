package repository

import (
	"bridge-go/internal/model"

	"gorm.io/gorm"
)

// MessageRepository defines the persistence operations for direct messaging.
type MessageRepository interface {
	CreateConversation(conversation *model.Conversation) error
	FindConversationByID(id uint) (*model.Conversation, error)
	FindConversationsByUser(userID uint) ([]model.Conversation, error)
	UpdateConversation(conversation *model.Conversation) error
	CreateMessage(message *model.DirectMessage) error
	FindMessagesByConversation(conversationID uint) ([]model.DirectMessage, error)
	MarkMessagesRead(conversationID, readerID uint) error
	CountConversations() (int64, error)
	CountMessages() (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateConversation(conversation *model.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *messageRepository) FindConversationByID(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindConversationsByUser retrieves conversations the user participates in,
// most recently updated first.
func (r *messageRepository) FindConversationsByUser(userID uint) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.Where("resident_id = ? OR staff_id = ?", userID, userID).
		Order("updated_at DESC").Find(&conversations).Error
	return conversations, err
}

func (r *messageRepository) UpdateConversation(conversation *model.Conversation) error {
	return r.db.Save(conversation).Error
}

func (r *messageRepository) CreateMessage(message *model.DirectMessage) error {
	return r.db.Create(message).Error
}

// FindMessagesByConversation retrieves a conversation's messages in send order.
func (r *messageRepository) FindMessagesByConversation(conversationID uint) ([]model.DirectMessage, error) {
	var messages []model.DirectMessage
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at").Find(&messages).Error
	return messages, err
}

// MarkMessagesRead marks every message in the conversation not sent by the
// reader as read.
func (r *messageRepository) MarkMessagesRead(conversationID, readerID uint) error {
	return r.db.Model(&model.DirectMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = ?", conversationID, readerID, false).
		Update("read", true).Error
}

func (r *messageRepository) CountConversations() (int64, error) {
	var total int64
	err := r.db.Model(&model.Conversation{}).Count(&total).Error
	return total, err
}

func (r *messageRepository) CountMessages() (int64, error) {
	var total int64
	err := r.db.Model(&model.DirectMessage{}).Count(&total).Error
	return total, err
}
