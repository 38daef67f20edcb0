package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dating-app/internal/models"
	"dating-app/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RegisterInput struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=4"`
	Gender      string `json:"gender" validate:"required,max=50"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	City        string `json:"city" validate:"required,min=2,max=100"`
	Country     string `json:"country" validate:"required,min=2,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountService struct {
	db          *gorm.DB
	tokenSecret string
	tokenExpiry time.Duration
}

func NewAccountService(db *gorm.DB, tokenSecret string, tokenExpiry time.Duration) *AccountService {
	return &AccountService{db: db, tokenSecret: tokenSecret, tokenExpiry: tokenExpiry}
}

// Register creates the user and its member profile together.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.UserDTO, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.City = strings.TrimSpace(input.City)
	input.Country = strings.TrimSpace(input.Country)
	if strings.TrimSpace(input.Password) == "" {
		input.Password = ""
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	dob, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return nil, newError(InvalidArgument, "date_of_birth must be a date in YYYY-MM-DD format")
	}

	hash, salt, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	member := models.Member{
		ID:          user.ID,
		DisplayName: input.DisplayName,
		DateOfBirth: dob,
		Created:     now,
		LastActive:  now,
		Gender:      input.Gender,
		City:        input.City,
		Country:     input.Country,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return newError(InvalidArgument, "Email is already in use")
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(InvalidArgument, "Email is already in use")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	return s.userDTO(&user, nil)
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (*models.UserDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(Unauthorized, "Invalid email address")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if !utils.VerifyPassword(input.Password, user.PasswordHash, user.PasswordSalt) {
		return nil, newError(Unauthorized, "Invalid password")
	}

	var member models.Member
	if err := db.Select("id", "image_url").Where("id = ?", user.ID).Take(&member).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	// Best effort; a failed stamp does not block login.
	if err := db.Model(&models.Member{}).Where("id = ?", user.ID).Update("last_active", time.Now().UTC()).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last active")
	}

	return s.userDTO(&user, member.ImageURL)
}

func (s *AccountService) userDTO(user *models.User, imageURL *string) (*models.UserDTO, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, s.tokenSecret, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if imageURL == nil {
		imageURL = user.ImageURL
	}
	return &models.UserDTO{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		ImageURL:    imageURL,
		Token:       token,
	}, nil
}
