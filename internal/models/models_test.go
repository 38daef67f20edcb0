package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, VisibleToBoth, StateOf(false, false))
	assert.Equal(t, HiddenFromSender, StateOf(true, false))
	assert.Equal(t, HiddenFromRecipient, StateOf(false, true))
	assert.Equal(t, Purged, StateOf(true, true))
}

func TestMessageDeletedBy(t *testing.T) {
	msg := Message{SenderID: "a", RecipientID: "b"}

	assert.Equal(t, HiddenFromSender, msg.DeletedBy("a"))
	assert.Equal(t, HiddenFromRecipient, msg.DeletedBy("b"))
	assert.Equal(t, VisibleToBoth, msg.DeletedBy("c"))

	msg.RecipientDeleted = true
	assert.Equal(t, Purged, msg.DeletedBy("a"))
	assert.Equal(t, HiddenFromRecipient, msg.DeletedBy("b"))
}

func TestMessageVisibleTo(t *testing.T) {
	msg := Message{SenderID: "a", RecipientID: "b", SenderDeleted: true}

	assert.False(t, msg.VisibleTo("a"))
	assert.True(t, msg.VisibleTo("b"))
	assert.False(t, msg.VisibleTo("c"))
}

func TestNewMemberDTO(t *testing.T) {
	main := "http://img/1.jpg"
	member := Member{
		ID:          "m1",
		DisplayName: "Alice",
		ImageURL:    &main,
		DateOfBirth: time.Date(1995, 3, 7, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		City:        "Oslo",
		Country:     "Norway",
		Photos: []Photo{
			{ID: 1, URL: main, PublicID: "p1", MemberID: "m1"},
			{ID: 2, URL: "http://img/2.jpg", PublicID: "p2", MemberID: "m1"},
		},
	}

	dto := NewMemberDTO(member)

	assert.Equal(t, "m1", dto.ID)
	assert.Equal(t, "1995-03-07", dto.DateOfBirth)
	assert.Equal(t, &main, dto.ImageURL)
	assert.Equal(t, []PhotoDTO{{ID: 1, URL: main, PublicID: "p1"}, {ID: 2, URL: "http://img/2.jpg", PublicID: "p2"}}, dto.Photos)
}

func TestNewMemberDTOWithoutPhotos(t *testing.T) {
	dto := NewMemberDTO(Member{ID: "m1"})
	assert.NotNil(t, dto.Photos)
	assert.Empty(t, dto.Photos)
}

func TestResolveParticipant(t *testing.T) {
	photo := "http://img/a.jpg"

	p := ResolveParticipant(&Member{DisplayName: "Profile", ImageURL: &photo}, &User{DisplayName: "Account"})
	assert.Equal(t, "Profile", p.Name)
	assert.Equal(t, &photo, p.PhotoURL)

	p = ResolveParticipant(&Member{}, &User{DisplayName: "Account"})
	assert.Equal(t, "Account", p.Name)
	assert.Nil(t, p.PhotoURL)

	p = ResolveParticipant(nil, nil)
	assert.Equal(t, UnknownParticipant, p.Name)
}
