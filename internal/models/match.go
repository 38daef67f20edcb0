package models

import (
	"time"
)

// Like is a directed edge: SourceUserID is interested in LikedUserID.
// Mutual matches are derived from two reciprocal edges and never stored.
type Like struct {
	SourceUserID string    `json:"source_user_id" gorm:"primaryKey;size:36"`
	LikedUserID  string    `json:"liked_user_id" gorm:"primaryKey;size:36;index"`
	CreatedAt    time.Time `json:"created_at"`
	SourceUser   *Member   `json:"-" gorm:"foreignKey:SourceUserID;constraint:OnDelete:CASCADE"`
	LikedUser    *Member   `json:"-" gorm:"foreignKey:LikedUserID;constraint:OnDelete:CASCADE"`
}

// Message is removed from storage once both SenderDeleted and
// RecipientDeleted would be true, so that combination is never persisted.
type Message struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	SenderID         string     `json:"sender_id" gorm:"size:36;not null;index"`
	RecipientID      string     `json:"recipient_id" gorm:"size:36;not null;index"`
	Content          string     `json:"content" gorm:"size:500;not null"`
	DateSent         time.Time  `json:"date_sent" gorm:"not null;index"`
	DateRead         *time.Time `json:"date_read,omitempty"`
	SenderDeleted    bool       `json:"-" gorm:"not null;default:false"`
	RecipientDeleted bool       `json:"-" gorm:"not null;default:false"`
	Sender           *Member    `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT"`
	Recipient        *Member    `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:RESTRICT"`
}

// MessageState is the visibility of a stored message.
type MessageState int

const (
	VisibleToBoth MessageState = iota
	HiddenFromSender
	HiddenFromRecipient
	// Purged is never stored; the row is deleted instead.
	Purged
)

func (s MessageState) String() string {
	switch s {
	case VisibleToBoth:
		return "visible"
	case HiddenFromSender:
		return "hidden_from_sender"
	case HiddenFromRecipient:
		return "hidden_from_recipient"
	case Purged:
		return "purged"
	}
	return "unknown"
}

// StateOf derives the visibility state from the two delete flags.
func StateOf(senderDeleted, recipientDeleted bool) MessageState {
	switch {
	case senderDeleted && recipientDeleted:
		return Purged
	case senderDeleted:
		return HiddenFromSender
	case recipientDeleted:
		return HiddenFromRecipient
	}
	return VisibleToBoth
}

func (m *Message) State() MessageState {
	return StateOf(m.SenderDeleted, m.RecipientDeleted)
}

// DeletedBy returns the state after actorID deletes the message. An actor
// who is neither sender nor recipient leaves the state unchanged.
func (m *Message) DeletedBy(actorID string) MessageState {
	senderDeleted, recipientDeleted := m.SenderDeleted, m.RecipientDeleted
	if m.SenderID == actorID {
		senderDeleted = true
	}
	if m.RecipientID == actorID {
		recipientDeleted = true
	}
	return StateOf(senderDeleted, recipientDeleted)
}

// VisibleTo reports whether the message still shows up for memberID.
func (m *Message) VisibleTo(memberID string) bool {
	switch memberID {
	case m.SenderID:
		return !m.SenderDeleted
	case m.RecipientID:
		return !m.RecipientDeleted
	}
	return false
}
