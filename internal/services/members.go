package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpdateMemberInput struct {
	Description *string `json:"description" validate:"omitempty,max=1000"`
	City        string  `json:"city" validate:"required,min=2,max=100"`
	Country     string  `json:"country" validate:"required,min=2,max=100"`
}

// PhotoUpload is a single image file received from a client. The caller
// owns Content and closes it.
type PhotoUpload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

type MemberService struct {
	db           *gorm.DB
	storage      PhotoStorage
	maxFileSize  int64
	allowedTypes map[string]struct{}
}

func NewMemberService(db *gorm.DB, storage PhotoStorage, maxFileSize int64, allowedTypes []string) *MemberService {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, ext := range allowedTypes {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &MemberService{
		db:           db,
		storage:      storage,
		maxFileSize:  maxFileSize,
		allowedTypes: allowed,
	}
}

// withPhotos preloads photos in upload order.
func withPhotos(db *gorm.DB) *gorm.DB {
	return db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("photos.id ASC")
	})
}

func (s *MemberService) ListMembers(ctx context.Context) ([]models.MemberDTO, error) {
	var members []models.Member
	if err := withPhotos(s.db.WithContext(ctx)).Order("display_name ASC, id ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return models.NewMemberDTOs(members), nil
}

func (s *MemberService) GetMember(ctx context.Context, id string) (*models.MemberDTO, error) {
	var member models.Member
	err := withPhotos(s.db.WithContext(ctx)).Where("id = ?", id).Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(NotFound, "Member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	dto := models.NewMemberDTO(member)
	return &dto, nil
}

func (s *MemberService) UpdateProfile(ctx context.Context, memberID string, input UpdateMemberInput) error {
	input.City = strings.TrimSpace(input.City)
	input.Country = strings.TrimSpace(input.Country)
	if err := validateInput(input); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"description": input.Description,
			"city":        input.City,
			"country":     input.Country,
			"last_active": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return newError(NotFound, "Member not found")
	}
	return nil
}

// FileTooLarge is the rejection for an upload over maxBytes.
func FileTooLarge(maxBytes int64) error {
	return newError(InvalidArgument, fmt.Sprintf("file too large (max %d bytes)", maxBytes))
}

func (s *MemberService) validateUpload(upload PhotoUpload) error {
	if upload.Content == nil || upload.Size <= 0 {
		return newError(InvalidArgument, "file is empty")
	}
	if upload.Size > s.maxFileSize {
		return FileTooLarge(s.maxFileSize)
	}
	if _, ok := s.allowedTypes[strings.ToLower(filepath.Ext(upload.FileName))]; !ok {
		return newError(InvalidArgument, "invalid file type")
	}
	return nil
}

// AddPhoto stores the upload and attaches it to the member. The first photo
// becomes the main photo.
func (s *MemberService) AddPhoto(ctx context.Context, memberID string, upload PhotoUpload) (*models.PhotoDTO, error) {
	if err := s.validateUpload(upload); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Select("id").Where("id = ?", memberID).Take(&models.Member{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(NotFound, "Member not found")
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	key := PhotoKey(memberID, upload.FileName)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(upload.FileName)))
	obj, err := s.storage.Save(ctx, key, io.LimitReader(upload.Content, s.maxFileSize), upload.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := models.Photo{URL: obj.URL, PublicID: obj.PublicID, MemberID: memberID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := lockMember(tx, memberID)
		if err != nil {
			return err
		}

		if err := tx.Create(&photo).Error; err != nil {
			return fmt.Errorf("failed to save photo: %w", err)
		}

		if member.ImageURL == nil {
			if err := tx.Model(&models.Member{}).Where("id = ?", memberID).Update("image_url", photo.URL).Error; err != nil {
				return fmt.Errorf("failed to set main photo: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.discardAsset(obj.PublicID)
		return nil, err
	}

	dto := models.NewPhotoDTO(photo)
	return &dto, nil
}

func (s *MemberService) SetMainPhoto(ctx context.Context, memberID string, photoID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockMember(tx, memberID); err != nil {
			return err
		}

		photo, err := findPhoto(tx, memberID, photoID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Member{}).Where("id = ?", memberID).Update("image_url", photo.URL).Error; err != nil {
			return fmt.Errorf("failed to set main photo: %w", err)
		}
		return nil
	})
}

// DeletePhoto removes one of the member's photos. The main photo can only be
// deleted when it is the last one left.
func (s *MemberService) DeletePhoto(ctx context.Context, memberID string, photoID uint) error {
	var publicID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := lockMember(tx, memberID)
		if err != nil {
			return err
		}

		photo, err := findPhoto(tx, memberID, photoID)
		if err != nil {
			return err
		}

		var remaining []models.Photo
		if err := tx.Where("member_id = ? AND id <> ?", memberID, photoID).Order("id ASC").Find(&remaining).Error; err != nil {
			return fmt.Errorf("failed to fetch photos: %w", err)
		}

		isMain := member.HasMainPhoto(photo.URL)
		if isMain && len(remaining) > 0 {
			return newError(InvalidOperation, "You cannot delete your main photo")
		}

		if err := tx.Delete(&models.Photo{}, photo.ID).Error; err != nil {
			return fmt.Errorf("failed to delete photo: %w", err)
		}

		// Only losing the main photo moves the main pointer.
		if isMain {
			var next interface{}
			if len(remaining) > 0 {
				next = remaining[0].URL
			}
			if err := tx.Model(&models.Member{}).Where("id = ?", memberID).Update("image_url", next).Error; err != nil {
				return fmt.Errorf("failed to reset main photo: %w", err)
			}
		}

		publicID = photo.PublicID
		return nil
	})
	if err != nil {
		return err
	}

	s.discardAsset(publicID)
	return nil
}

// discardAsset removes a stored photo without failing the caller.
func (s *MemberService) discardAsset(publicID string) {
	if publicID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, publicID); err != nil {
		logrus.WithError(err).WithField("public_id", publicID).Warn("Failed to delete stored photo")
	}
}

func lockMember(tx *gorm.DB, memberID string) (*models.Member, error) {
	var member models.Member
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", memberID).Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(NotFound, "Member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return &member, nil
}

func findPhoto(tx *gorm.DB, memberID string, photoID uint) (*models.Photo, error) {
	var photo models.Photo
	err := tx.Where("id = ? AND member_id = ?", photoID, memberID).Take(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(NotFound, "Photo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	return &photo, nil
}
