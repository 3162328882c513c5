package service

import (
	"errors"
	"fmt"
	"time"

	"bridge-go/internal/model"
	"bridge-go/internal/repository"
)

// MessageService handles direct conversations between residents and staff.
type MessageService interface {
	StartConversation(residentID, staffID, serviceID uint) (*model.Conversation, error)
	ListConversations(userID uint) ([]model.Conversation, error)
	SendMessage(conversationID, senderID uint, body string) (*model.DirectMessage, error)
	ListMessages(conversationID, readerID uint) ([]model.DirectMessage, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// StartConversation opens a thread between a resident and a staff account.
func (s *messageService) StartConversation(residentID, staffID, serviceID uint) (*model.Conversation, error) {
	if residentID == staffID {
		return nil, errors.New("cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.FindByID(staffID); err != nil {
		return nil, fmt.Errorf("staff account not found: %w", err)
	}

	conversation := &model.Conversation{
		ResidentID: residentID,
		StaffID:    staffID,
		ServiceID:  serviceID,
	}
	if err := s.messageRepo.CreateConversation(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// ListConversations returns the threads the user participates in,
// most recently active first.
func (s *messageService) ListConversations(userID uint) ([]model.Conversation, error) {
	return s.messageRepo.FindConversationsByUser(userID)
}

// SendMessage appends a message to a thread the sender belongs to and
// refreshes the conversation preview.
func (s *messageService) SendMessage(conversationID, senderID uint, body string) (*model.DirectMessage, error) {
	if body == "" {
		return nil, errors.New("message body is required")
	}

	conversation, err := s.messageRepo.FindConversationByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if conversation.ResidentID != senderID && conversation.StaffID != senderID {
		return nil, errors.New("sender is not part of this conversation")
	}

	message := &model.DirectMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messageRepo.CreateMessage(message); err != nil {
		return nil, err
	}

	conversation.LastMessage = body
	conversation.UpdatedAt = time.Now()
	if err := s.messageRepo.UpdateConversation(conversation); err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a thread in chronological order and marks the other
// party's messages as read.
func (s *messageService) ListMessages(conversationID, readerID uint) ([]model.DirectMessage, error) {
	conversation, err := s.messageRepo.FindConversationByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}
	if conversation.ResidentID != readerID && conversation.StaffID != readerID {
		return nil, errors.New("reader is not part of this conversation")
	}

	messages, err := s.messageRepo.FindMessagesByConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkMessagesRead(conversationID, readerID); err != nil {
		return nil, err
	}
	return messages, nil
}
