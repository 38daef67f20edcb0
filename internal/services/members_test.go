package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dating-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowedTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func newTestMemberService(t *testing.T) (*MemberService, *LocalStorage) {
	t.Helper()
	db := setupTestDB(t)
	createMember(t, db, "a", "Alice")
	createMember(t, db, "b", "Bob")

	storage, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewMemberService(db, storage, 1024, allowedTypes), storage
}

func upload(name, content string) PhotoUpload {
	return PhotoUpload{FileName: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func loadMember(t *testing.T, svc *MemberService, id string) models.Member {
	t.Helper()
	var member models.Member
	require.NoError(t, withPhotos(svc.db).Where("id = ?", id).Take(&member).Error)
	return member
}

func TestListAndGetMember(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, memberIDs(members))

	member, err := svc.GetMember(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Bob", member.DisplayName)
	assert.Equal(t, "1990-01-01", member.DateOfBirth)

	_, err = svc.GetMember(ctx, "ghost")
	requireKind(t, err, NotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()
	before := loadMember(t, svc, "a")

	description := "Coffee lover"
	err := svc.UpdateProfile(ctx, "a", UpdateMemberInput{Description: &description, City: "Bahir Dar", Country: "Ethiopia"})
	require.NoError(t, err)

	after := loadMember(t, svc, "a")
	assert.Equal(t, "Bahir Dar", after.City)
	require.NotNil(t, after.Description)
	assert.Equal(t, description, *after.Description)
	assert.False(t, after.LastActive.Before(before.LastActive))
}

func TestUpdateProfileValidation(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()
	long := strings.Repeat("d", 1001)

	for _, input := range []UpdateMemberInput{
		{City: "", Country: "Ethiopia"},
		{City: "X", Country: "Ethiopia"},
		{City: "Gondar", Country: strings.Repeat("c", 101)},
		{City: "Gondar", Country: "Ethiopia", Description: &long},
	} {
		err := svc.UpdateProfile(ctx, "a", input)
		requireKind(t, err, InvalidArgument)
	}

	err := svc.UpdateProfile(ctx, "ghost", UpdateMemberInput{City: "Gondar", Country: "Ethiopia"})
	requireKind(t, err, NotFound)
}

func TestAddPhotoSetsMainOnlyForFirst(t *testing.T) {
	svc, storage := newTestMemberService(t)
	ctx := context.Background()

	first, err := svc.AddPhoto(ctx, "a", upload("first.jpg", "jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.URL, "http://localhost:8080/uploads/photos/a/"))

	second, err := svc.AddPhoto(ctx, "a", upload("second.PNG", "png-bytes"))
	require.NoError(t, err)

	member := loadMember(t, svc, "a")
	require.NotNil(t, member.ImageURL)
	assert.Equal(t, first.URL, *member.ImageURL)
	require.Len(t, member.Photos, 2)
	assert.Equal(t, second.ID, member.Photos[1].ID)

	data, err := os.ReadFile(filepath.Join(storage.Dir(), filepath.FromSlash(second.PublicID)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestAddPhotoValidation(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		upload PhotoUpload
		want   string
	}{
		{"empty", upload("a.jpg", ""), "file is empty"},
		{"too large", upload("a.jpg", strings.Repeat("x", 1025)), "file too large"},
		{"bad type", upload("a.exe", "MZ"), "invalid file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPhoto(ctx, "a", tt.upload)
			requireKind(t, err, InvalidArgument)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := svc.AddPhoto(ctx, "ghost", upload("a.jpg", "bytes"))
	requireKind(t, err, NotFound)
}

type failingStorage struct{}

func (f *failingStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (StoredObject, error) {
	return StoredObject{}, errors.New("disk full")
}

func (f *failingStorage) Delete(ctx context.Context, publicID string) error {
	return nil
}

func TestAddPhotoStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	createMember(t, db, "a", "Alice")
	storage := &failingStorage{}
	svc := NewMemberService(db, storage, 1024, allowedTypes)

	_, err := svc.AddPhoto(context.Background(), "a", upload("a.jpg", "bytes"))
	require.Error(t, err)
	assert.Zero(t, KindOf(err))

	var count int64
	db.Model(&models.Photo{}).Count(&count)
	assert.Zero(t, count)
}

func TestSetMainPhoto(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()

	_, err := svc.AddPhoto(ctx, "a", upload("1.jpg", "one"))
	require.NoError(t, err)
	second, err := svc.AddPhoto(ctx, "a", upload("2.jpg", "two"))
	require.NoError(t, err)
	bobs, err := svc.AddPhoto(ctx, "b", upload("b.jpg", "bob"))
	require.NoError(t, err)

	require.NoError(t, svc.SetMainPhoto(ctx, "a", second.ID))
	member := loadMember(t, svc, "a")
	assert.Equal(t, second.URL, *member.ImageURL)

	err = svc.SetMainPhoto(ctx, "a", bobs.ID)
	requireKind(t, err, NotFound)

	err = svc.SetMainPhoto(ctx, "a", 999)
	requireKind(t, err, NotFound)
}

func TestDeletePhotoRules(t *testing.T) {
	svc, storage := newTestMemberService(t)
	ctx := context.Background()

	main, err := svc.AddPhoto(ctx, "a", upload("1.jpg", "one"))
	require.NoError(t, err)
	other, err := svc.AddPhoto(ctx, "a", upload("2.jpg", "two"))
	require.NoError(t, err)

	err = svc.DeletePhoto(ctx, "a", main.ID)
	requireKind(t, err, InvalidOperation)

	require.NoError(t, svc.DeletePhoto(ctx, "a", other.ID))
	member := loadMember(t, svc, "a")
	require.NotNil(t, member.ImageURL)
	assert.Equal(t, main.URL, *member.ImageURL)
	assert.Len(t, member.Photos, 1)

	_, err = os.Stat(filepath.Join(storage.Dir(), filepath.FromSlash(other.PublicID)))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, svc.DeletePhoto(ctx, "a", main.ID))
	member = loadMember(t, svc, "a")
	assert.Nil(t, member.ImageURL)
	assert.Empty(t, member.Photos)

	err = svc.DeletePhoto(ctx, "a", main.ID)
	requireKind(t, err, NotFound)
}

func TestDeleteNonMainPhotoKeepsMainPointer(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()

	_, err := svc.AddPhoto(ctx, "a", upload("1.jpg", "one"))
	require.NoError(t, err)
	other, err := svc.AddPhoto(ctx, "a", upload("2.jpg", "two"))
	require.NoError(t, err)

	external := "https://cdn.example.com/avatar.jpg"
	require.NoError(t, svc.db.Model(&models.Member{}).Where("id = ?", "a").Update("image_url", external).Error)

	require.NoError(t, svc.DeletePhoto(ctx, "a", other.ID))
	member := loadMember(t, svc, "a")
	require.NotNil(t, member.ImageURL)
	assert.Equal(t, external, *member.ImageURL)
	assert.Len(t, member.Photos, 1)
}

func TestDeletePhotoOfAnotherMember(t *testing.T) {
	svc, _ := newTestMemberService(t)
	ctx := context.Background()

	photo, err := svc.AddPhoto(ctx, "b", upload("b.jpg", "bob"))
	require.NoError(t, err)

	err = svc.DeletePhoto(ctx, "a", photo.ID)
	requireKind(t, err, NotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = storage.Save(context.Background(), "../outside.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg")
	assert.Error(t, err)

	assert.NoError(t, storage.Delete(context.Background(), "photos/missing.jpg"))
}

func TestLocalStorageRemovesPartialFile(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = storage.Save(ctx, "photos/a/partial.jpg", strings.NewReader("data"), 4, "image/jpeg")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(storage.Dir(), "photos", "a", "partial.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
