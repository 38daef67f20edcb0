package services

import (
	"context"
	"errors"
	"fmt"

	"dating-app/internal/metrics"
	"dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeService struct {
	db     *gorm.DB
	locker Locker
}

func NewLikeService(db *gorm.DB, locker Locker) *LikeService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &LikeService{db: db, locker: locker}
}

func likeLockKey(sourceID, targetID string) string {
	return fmt.Sprintf("like-lock:%s:%s", sourceID, targetID)
}

// ToggleLike flips the (sourceID, targetID) edge and reports whether the
// edge exists afterwards.
func (s *LikeService) ToggleLike(ctx context.Context, sourceID, targetID string) (bool, error) {
	if sourceID == targetID {
		return false, newError(InvalidOperation, "You cannot like yourself")
	}

	unlock, err := s.locker.Lock(ctx, likeLockKey(sourceID, targetID))
	if err != nil {
		return false, fmt.Errorf("failed to lock like edge: %w", err)
	}
	defer unlock()

	var liked bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := tx.Where("source_user_id = ? AND liked_user_id = ?", sourceID, targetID).Session(&gorm.Session{})

		var existing models.Like
		err := edge.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&existing).Error

		switch {
		case err == nil:
			result := edge.Delete(&models.Like{})
			if result.Error != nil {
				return wrapError(PersistenceFailure, "Failed to update like", result.Error)
			}
			if result.RowsAffected == 0 {
				return newError(PersistenceFailure, "Failed to update like")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Like{SourceUserID: sourceID, LikedUserID: targetID})
			if result.Error != nil {
				return wrapError(PersistenceFailure, "Failed to update like", result.Error)
			}
			if result.RowsAffected == 0 {
				return newError(PersistenceFailure, "Failed to update like")
			}
			liked = true
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	metrics.LikeToggles.WithLabelValues(action).Inc()
	logrus.WithFields(logrus.Fields{
		"source": sourceID,
		"target": targetID,
		"action": action,
	}).Debug("Like toggled")

	return liked, nil
}

// Query returns the profiles selected by predicate for viewerID, ordered by
// display name.
func (s *LikeService) Query(ctx context.Context, viewerID string, predicate Predicate) ([]models.MemberDTO, error) {
	if !predicate.Valid() {
		return nil, newError(InvalidArgument, "Invalid predicate")
	}

	edges, err := s.edgesOf(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	ids := edges.Select(viewerID, predicate)
	if len(ids) == 0 {
		return []models.MemberDTO{}, nil
	}

	var members []models.Member
	if err := withPhotos(s.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("display_name ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to load liked members: %w", err)
	}

	return models.NewMemberDTOs(members), nil
}

// LikedIDs returns the IDs of every member viewerID currently likes.
func (s *LikeService) LikedIDs(ctx context.Context, viewerID string) ([]string, error) {
	edges, err := s.edgesOf(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return edges.Select(viewerID, PredicateLiked), nil
}

func (s *LikeService) edgesOf(ctx context.Context, viewerID string) (EdgeSet, error) {
	var likes []models.Like
	if err := s.db.WithContext(ctx).
		Where("source_user_id = ? OR liked_user_id = ?", viewerID, viewerID).
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	return NewEdgeSet(likes), nil
}
