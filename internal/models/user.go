package models

import (
	"time"
)

// User is the credential facet of an account. Every User has exactly one
// Member sharing its ID.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	DisplayName  string    `json:"display_name" gorm:"not null"`
	ImageURL     *string   `json:"image_url,omitempty"`
	PasswordHash []byte    `json:"-" gorm:"not null"`
	PasswordSalt []byte    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	Member       *Member   `json:"-" gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE"`
}

// Member is the public dating profile of a User.
type Member struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	ImageURL    *string   `json:"image_url,omitempty"`
	DateOfBirth time.Time `json:"date_of_birth" gorm:"type:date;not null"`
	Created     time.Time `json:"created" gorm:"not null"`
	LastActive  time.Time `json:"last_active" gorm:"not null"`
	Gender      string    `json:"gender" gorm:"not null"`
	Description *string   `json:"description,omitempty" gorm:"size:1000"`
	City        string    `json:"city" gorm:"size:100;not null"`
	Country     string    `json:"country" gorm:"size:100;not null"`
	Photos      []Photo   `json:"photos,omitempty" gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
}

type Photo struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	URL      string `json:"url" gorm:"not null"`
	PublicID string `json:"public_id" gorm:"not null"`
	MemberID string `json:"member_id" gorm:"size:36;not null;index"`
}

// HasMainPhoto reports whether url is the member's current main image.
func (m *Member) HasMainPhoto(url string) bool {
	return m.ImageURL != nil && *m.ImageURL == url
}
