package models

import (
	"time"
)

const dateLayout = "2006-01-02"

type PhotoDTO struct {
	ID       uint   `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type MemberDTO struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	ImageURL    *string    `json:"image_url"`
	DateOfBirth string     `json:"date_of_birth"`
	Created     time.Time  `json:"created"`
	LastActive  time.Time  `json:"last_active"`
	Gender      string     `json:"gender"`
	Description *string    `json:"description"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Photos      []PhotoDTO `json:"photos"`
}

type MessageDTO struct {
	ID                uint       `json:"id"`
	SenderID          string     `json:"sender_id"`
	SenderName        string     `json:"sender_name"`
	SenderPhotoURL    *string    `json:"sender_photo_url"`
	RecipientID       string     `json:"recipient_id"`
	RecipientName     string     `json:"recipient_name"`
	RecipientPhotoURL *string    `json:"recipient_photo_url"`
	Content           string     `json:"content"`
	DateSent          time.Time  `json:"date_sent"`
	DateRead          *time.Time `json:"date_read"`
}

type UserDTO struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	ImageURL    *string `json:"image_url"`
	Token       string  `json:"token"`
}

func NewPhotoDTO(p Photo) PhotoDTO {
	return PhotoDTO{ID: p.ID, URL: p.URL, PublicID: p.PublicID}
}

// NewMemberDTO is the single public projection of a Member. Member listing,
// member detail and every like query go through it.
func NewMemberDTO(m Member) MemberDTO {
	photos := make([]PhotoDTO, 0, len(m.Photos))
	for _, p := range m.Photos {
		photos = append(photos, NewPhotoDTO(p))
	}

	return MemberDTO{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		ImageURL:    m.ImageURL,
		DateOfBirth: m.DateOfBirth.Format(dateLayout),
		Created:     m.Created,
		LastActive:  m.LastActive,
		Gender:      m.Gender,
		Description: m.Description,
		City:        m.City,
		Country:     m.Country,
		Photos:      photos,
	}
}

func NewMemberDTOs(members []Member) []MemberDTO {
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, NewMemberDTO(m))
	}
	return dtos
}

// Participant is the name and photo shown for one side of a message.
type Participant struct {
	Name     string
	PhotoURL *string
}

// UnknownParticipant is used when neither the member profile nor the user
// record carries a display name.
const UnknownParticipant = "Unknown"

// ResolveParticipant picks the member display name, then the user display
// name, then UnknownParticipant.
func ResolveParticipant(member *Member, user *User) Participant {
	var p Participant
	if member != nil {
		p.Name = member.DisplayName
		p.PhotoURL = member.ImageURL
	}
	if p.Name == "" && user != nil {
		p.Name = user.DisplayName
	}
	if p.Name == "" {
		p.Name = UnknownParticipant
	}
	return p
}

func NewMessageDTO(m Message, sender, recipient Participant) MessageDTO {
	return MessageDTO{
		ID:                m.ID,
		SenderID:          m.SenderID,
		SenderName:        sender.Name,
		SenderPhotoURL:    sender.PhotoURL,
		RecipientID:       m.RecipientID,
		RecipientName:     recipient.Name,
		RecipientPhotoURL: recipient.PhotoURL,
		Content:           m.Content,
		DateSent:          m.DateSent,
		DateRead:          m.DateRead,
	}
}
