package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dating-app/internal/metrics"
	"dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Container string

const (
	ContainerInbox  Container = "inbox"
	ContainerOutbox Container = "outbox"
	ContainerUnread Container = "unread"
)

type CreateMessageInput struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=500"`
}

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

func (s *MessageService) SendMessage(ctx context.Context, senderID string, input CreateMessageInput) (*models.MessageDTO, error) {
	if senderID == input.RecipientID {
		return nil, newError(InvalidOperation, "You cannot send messages to yourself")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, newError(InvalidArgument, "content is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	people, err := participants(db, []string{senderID, input.RecipientID})
	if err != nil {
		return nil, err
	}
	if _, ok := people[input.RecipientID]; !ok {
		return nil, newError(NotFound, "Recipient not found")
	}
	if _, ok := people[senderID]; !ok {
		return nil, newError(NotFound, "Member not found")
	}

	msg := models.Message{
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Content:     input.Content,
		DateSent:    time.Now().UTC(),
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	metrics.MessagesSent.Inc()
	logrus.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"sender":     senderID,
		"recipient":  input.RecipientID,
	}).Debug("Message sent")

	dto := models.NewMessageDTO(msg, people[senderID], people[input.RecipientID])
	return &dto, nil
}

// ListMessages returns one mailbox of viewerID, newest first. An unknown
// container yields an empty list.
func (s *MessageService) ListMessages(ctx context.Context, viewerID string, container Container) ([]models.MessageDTO, error) {
	db := s.db.WithContext(ctx)

	query := db.Order("date_sent DESC, id DESC")
	switch container {
	case ContainerInbox:
		query = query.Where("recipient_id = ? AND recipient_deleted = ?", viewerID, false)
	case ContainerOutbox:
		query = query.Where("sender_id = ? AND sender_deleted = ?", viewerID, false)
	case ContainerUnread:
		query = query.Where("recipient_id = ? AND recipient_deleted = ? AND date_read IS NULL", viewerID, false)
	default:
		return []models.MessageDTO{}, nil
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return project(db, messages)
}

// GetThread returns the conversation between viewerID and otherID, oldest
// first, and marks every unread message addressed to viewerID as read.
func (s *MessageService) GetThread(ctx context.Context, viewerID, otherID string) ([]models.MessageDTO, error) {
	db := s.db.WithContext(ctx)

	var messages []models.Message
	if err := db.
		Where("(sender_id = ? AND recipient_id = ? AND sender_deleted = ?) OR (sender_id = ? AND recipient_id = ? AND recipient_deleted = ?)",
			viewerID, otherID, false, otherID, viewerID, false).
		Order("date_sent ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	var unread []uint
	for _, m := range messages {
		if m.RecipientID == viewerID && m.DateRead == nil {
			unread = append(unread, m.ID)
		}
	}

	if len(unread) > 0 {
		if err := db.Model(&models.Message{}).
			Where("id IN ? AND recipient_id = ? AND date_read IS NULL", unread, viewerID).
			Update("date_read", time.Now().UTC()).Error; err != nil {
			return nil, fmt.Errorf("failed to mark messages read: %w", err)
		}

		// A row hidden or purged after the fetch above is still returned
		// this once, unread; later reads no longer include it.
		var marked []models.Message
		if err := db.Select("id", "date_read").Where("id IN ?", unread).Find(&marked).Error; err != nil {
			return nil, fmt.Errorf("failed to reload read receipts: %w", err)
		}
		readAt := make(map[uint]*time.Time, len(marked))
		for _, m := range marked {
			readAt[m.ID] = m.DateRead
		}
		for i := range messages {
			if t, ok := readAt[messages[i].ID]; ok && t != nil {
				messages[i].DateRead = t
			}
		}
	}

	return project(db, messages)
}

// DeleteMessage hides the message from actorID and removes it for good once
// both sides have deleted it.
func (s *MessageService) DeleteMessage(ctx context.Context, actorID string, messageID uint) error {
	var state models.MessageState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", messageID).Take(&msg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(NotFound, "Message not found")
		}
		if err != nil {
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		var changed int64
		if msg.SenderID == actorID {
			result := tx.Model(&models.Message{}).
				Where("id = ? AND sender_id = ? AND sender_deleted = ?", messageID, actorID, false).
				Update("sender_deleted", true)
			if result.Error != nil {
				return fmt.Errorf("failed to delete message: %w", result.Error)
			}
			changed += result.RowsAffected
		}
		if msg.RecipientID == actorID {
			result := tx.Model(&models.Message{}).
				Where("id = ? AND recipient_id = ? AND recipient_deleted = ?", messageID, actorID, false).
				Update("recipient_deleted", true)
			if result.Error != nil {
				return fmt.Errorf("failed to delete message: %w", result.Error)
			}
			changed += result.RowsAffected
		}
		if changed == 0 {
			// Not a party, or already hidden from this actor.
			state = msg.State()
			return nil
		}

		result := tx.Where("id = ? AND sender_deleted = ? AND recipient_deleted = ?", messageID, true, true).
			Delete(&models.Message{})
		if result.Error != nil {
			return fmt.Errorf("failed to purge message: %w", result.Error)
		}

		state = msg.DeletedBy(actorID)
		if result.RowsAffected > 0 {
			state = models.Purged
		}
		return nil
	})
	if err != nil {
		return err
	}

	if state == models.Purged {
		metrics.MessagesPurged.Inc()
	}
	logrus.WithFields(logrus.Fields{
		"message_id": messageID,
		"actor":      actorID,
		"state":      state.String(),
	}).Debug("Message deleted")
	return nil
}

// participants resolves display name and photo for each ID that has a
// member or user record.
func participants(db *gorm.DB, ids []string) (map[string]models.Participant, error) {
	var members []models.Member
	if err := db.Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	var users []models.User
	if err := db.Select("id", "display_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	byMember := make(map[string]*models.Member, len(members))
	for i := range members {
		byMember[members[i].ID] = &members[i]
	}
	byUser := make(map[string]*models.User, len(users))
	for i := range users {
		byUser[users[i].ID] = &users[i]
	}

	out := make(map[string]models.Participant, len(ids))
	for _, id := range ids {
		member, user := byMember[id], byUser[id]
		if member == nil && user == nil {
			continue
		}
		out[id] = models.ResolveParticipant(member, user)
	}
	return out, nil
}

func project(db *gorm.DB, messages []models.Message) ([]models.MessageDTO, error) {
	dtos := make([]models.MessageDTO, 0, len(messages))
	if len(messages) == 0 {
		return dtos, nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, m := range messages {
		for _, id := range []string{m.SenderID, m.RecipientID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	people, err := participants(db, ids)
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		sender, ok := people[m.SenderID]
		if !ok {
			sender = models.ResolveParticipant(nil, nil)
		}
		recipient, ok := people[m.RecipientID]
		if !ok {
			recipient = models.ResolveParticipant(nil, nil)
		}
		dtos = append(dtos, models.NewMessageDTO(m, sender, recipient))
	}
	return dtos, nil
}
