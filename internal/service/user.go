package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService covers account reads and self-service changes.
type UserService struct {
	db     *gorm.DB
	images ImageStore
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, images ImageStore, logger *zap.Logger) *UserService {
	return &UserService{db: db, images: images, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return findUser(ctx, s.db, id)
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := findUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return withDetail(ErrInvalidValue, "current_password", "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.Uint("user_id", userID))
	return nil
}

// SetAvatar stores the image and replaces the previous avatar.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, payload string) (*models.User, error) {
	user, err := findUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	ref, err := s.images.Save(ctx, payload, AvatarFolder)
	if err != nil {
		return nil, withField(err, "avatar")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", ref).Error; err != nil {
		s.removeImage(ctx, ref)
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	if user.Avatar != nil {
		s.removeImage(ctx, *user.Avatar)
	}
	user.Avatar = &ref
	return user, nil
}

// DeleteAvatar clears the avatar. Clearing an empty avatar is a no-op.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := findUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", nil).Error; err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	s.removeImage(ctx, *user.Avatar)
	return nil
}

func (s *UserService) removeImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to remove avatar", zap.String("avatar", ref), zap.Error(err))
	}
}
