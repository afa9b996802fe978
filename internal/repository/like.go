package repository

import (
	"context"
	"fmt"

	"github.com/warbler-social/warbler/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle flips the like edge for (userID, messageID) and reports the new
// state: true when the call created the edge, false when it removed it.
//
// The delete runs first; if it removed a row the edge existed and the toggle
// is an unlike. Otherwise an insert with a conflict clause over the unique
// (user_id, message_id) index creates the edge. Two concurrent toggles are
// serialized by the index: the loser's insert hits the conflict clause and
// observes the edge as present, so the net effect stays deterministic.
func (r *LikeRepository) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND message_id = ?", userID, messageID).
			Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			liked = false
			return nil
		}

		// Losing the insert race still means the edge is present, so the
		// toggle reports liked either way.
		if _, err := insertLike(tx, userID, messageID); err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// insertLike creates the edge with a conflict clause over the unique
// (user_id, message_id) index. It reports whether this call created the
// row; a concurrent insert of the same pair makes it a no-op.
func insertLike(tx *gorm.DB, userID, messageID uint) (bool, error) {
	like := models.Like{UserID: userID, MessageID: messageID}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *LikeRepository) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}

func (r *LikeRepository) CountByMessageID(ctx context.Context, messageID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("message_id = ?", messageID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) GetLikedMessages(ctx context.Context, userID uint) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Table("messages").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get liked messages: %w", err)
	}
	return messages, nil
}
