package services

import (
	"context"
	"strconv"

	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/errs"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

type MessageService struct {
	messageRepo *repository.MessageRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewMessageService(messageRepo *repository.MessageRepository, producer queue.Publisher, logger *logger.Logger) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		producer:    producer,
		logger:      logger,
	}
}

// Post creates a warble owned by the acting user. Anonymous callers get
// RequireLogin from the gate; an authenticated user may only post as
// themselves, which the signature enforces. Text is immutable afterwards.
func (s *MessageService) Post(ctx context.Context, actorID *uint, text string) (*models.Message, authz.Decision, error) {
	decision := authz.Decide(actorID, authz.ActionPostMessage, 0)
	if decision != authz.Allow {
		return nil, decision, nil
	}

	if text == "" {
		return nil, decision, errs.ErrTextRequired
	}
	if len([]rune(text)) > models.MaxMessageLength {
		return nil, decision, errs.ErrTextTooLong
	}

	message := &models.Message{
		Text:   text,
		UserID: *actorID,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, decision, err
	}

	event := queue.NewEvent(queue.EventMessageCreated, queue.MessageEventData{
		MessageID: message.ID,
		UserID:    message.UserID,
		Text:      message.Text,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(*actorID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish message created event")
	}

	s.logger.WithField("message_id", message.ID).Info("Message posted")
	return message, decision, nil
}

func (s *MessageService) GetByID(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, errs.ErrNotFound
	}
	return message, nil
}

// Delete removes a message. Only its owner may delete it: a missing
// identity yields RequireLogin, a wrong owner yields Deny and the message
// is left intact.
func (s *MessageService) Delete(ctx context.Context, actorID *uint, messageID uint) (authz.Decision, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return authz.Deny, err
	}
	if message == nil {
		return authz.Deny, errs.ErrNotFound
	}

	decision := authz.Decide(actorID, authz.ActionDeleteMessage, message.UserID)
	if decision != authz.Allow {
		return decision, nil
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return decision, err
	}

	event := queue.NewEvent(queue.EventMessageDeleted, queue.MessageEventData{
		MessageID: messageID,
		UserID:    message.UserID,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(message.UserID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish message deleted event")
	}

	s.logger.WithField("message_id", messageID).Info("Message deleted")
	return decision, nil
}

func (s *MessageService) GetByUserID(ctx context.Context, userID uint, offset, limit int) ([]*models.Message, error) {
	return s.messageRepo.GetByUserID(ctx, userID, offset, limit)
}
