package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Subscription is a followed author together with a preview of their recipes.
type Subscription struct {
	User         models.User
	RecipesCount int64
	Recipes      []models.Recipe
}

// FollowService manages the subscription graph between users.
type FollowService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFollowService(db *gorm.DB, logger *zap.Logger) *FollowService {
	return &FollowService{db: db, logger: logger}
}

// Follow subscribes userID to targetID and returns the target's subscription
// card with at most recipesLimit recipes (nil means all).
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint, recipesLimit *int) (*Subscription, error) {
	if userID == targetID {
		return nil, ErrSelfFollow
	}
	target, err := findUser(ctx, s.db, targetID)
	if err != nil {
		return nil, err
	}

	edge := models.Follow{FollowerID: userID, FolloweeID: targetID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&edge).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, withDetail(ErrAlreadyExists, "", "you are already subscribed to this user")
		case database.IsCheckViolation(err):
			return nil, ErrSelfFollow
		}
		return nil, fmt.Errorf("follow user: %w", err)
	}

	s.logger.Info("user followed", zap.Uint("follower_id", userID), zap.Uint("followee_id", targetID))

	subs, err := s.subscriptions(ctx, []models.User{*target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unfollow removes the edge. Removing a missing edge is an error.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if _, err := findUser(ctx, s.db, targetID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("unfollow user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return withDetail(ErrEntryNotFound, "", "you are not subscribed to this user")
	}

	s.logger.Info("user unfollowed", zap.Uint("follower_id", userID), zap.Uint("followee_id", targetID))
	return nil
}

// ListFollowing returns everyone userID follows, newest accounts first.
func (s *FollowService) ListFollowing(ctx context.Context, userID uint, recipesLimit *int) ([]Subscription, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", userID)).
		Order("created_at DESC").Order("id DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return s.subscriptions(ctx, users, recipesLimit)
}

// IsFollowing reports whether the viewer follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, viewer Viewer, targetID uint) (bool, error) {
	follows, err := s.FollowsAny(ctx, viewer, []uint{targetID})
	if err != nil {
		return false, err
	}
	return follows[targetID], nil
}

// FollowsAny resolves the viewer's subscriptions for a batch of users.
func (s *FollowService) FollowsAny(ctx context.Context, viewer Viewer, userIDs []uint) (map[uint]bool, error) {
	follows := make(map[uint]bool, len(userIDs))
	if !viewer.IsAuthenticated() || len(userIDs) == 0 {
		return follows, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id IN ?", viewer.UserID, userIDs).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("check subscriptions: %w", err)
	}
	for _, id := range ids {
		follows[id] = true
	}
	return follows, nil
}

func (s *FollowService) subscriptions(ctx context.Context, users []models.User, recipesLimit *int) ([]Subscription, error) {
	subs := make([]Subscription, len(users))
	if len(users) == 0 {
		return subs, nil
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
		subs[i].User = u
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id IN ?", ids).
		Order("created_at DESC").Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("load author recipes: %w", err)
	}

	byAuthor := make(map[uint][]models.Recipe, len(users))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	for i := range subs {
		own := byAuthor[subs[i].User.ID]
		subs[i].RecipesCount = int64(len(own))
		if recipesLimit != nil && *recipesLimit >= 0 && *recipesLimit < len(own) {
			own = own[:*recipesLimit]
		}
		if own == nil {
			own = []models.Recipe{}
		}
		subs[i].Recipes = own
	}
	return subs, nil
}

func findUser(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withDetail(ErrNotFound, "", "user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
