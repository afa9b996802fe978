package services

import (
	"context"
	"strconv"

	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/errs"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// LikeState reports the outcome of a toggle.
type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

type GraphService struct {
	userRepo    *repository.UserRepository
	followRepo  *repository.FollowRepository
	likeRepo    *repository.LikeRepository
	messageRepo *repository.MessageRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewGraphService(userRepo *repository.UserRepository, followRepo *repository.FollowRepository, likeRepo *repository.LikeRepository, messageRepo *repository.MessageRepository, producer queue.Publisher, logger *logger.Logger) *GraphService {
	return &GraphService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		messageRepo: messageRepo,
		producer:    producer,
		logger:      logger,
	}
}

// Follow creates the edge follower -> followed. Following a user twice is a
// no-op success, enforced by the unique index rather than a lookup.
// Self-follow is not rejected at this layer; the data layer permits it.
func (s *GraphService) Follow(ctx context.Context, followerID, followedID uint) error {
	followed, err := s.userRepo.GetByID(ctx, followedID)
	if err != nil {
		return err
	}
	if followed == nil {
		return errs.ErrNotFound
	}

	created, err := s.followRepo.Create(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	event := queue.NewEvent(queue.EventFollowCreated, queue.FollowEventData{
		FollowerID: followerID,
		FollowedID: followedID,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(followerID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish follow created event")
	}
	return nil
}

// Unfollow removes the edge if present; a missing edge is a no-op.
func (s *GraphService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if err := s.followRepo.Delete(ctx, followerID, followedID); err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID: followerID,
		FollowedID: followedID,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(followerID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish follow deleted event")
	}
	return nil
}

func (s *GraphService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

func (s *GraphService) IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, userID)
}

// Followers and Following return unordered snapshots; callers that need an
// order sort on their side.
func (s *GraphService) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

func (s *GraphService) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}

func (s *GraphService) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *GraphService) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// ToggleLike is the only like-mutation primitive. The gate runs first; on
// Allow, the repository flips the edge atomically. Liking one's own message
// is permitted. The target message must exist.
func (s *GraphService) ToggleLike(ctx context.Context, actorID *uint, messageID uint) (LikeState, authz.Decision, error) {
	decision := authz.Decide(actorID, authz.ActionToggleLike, 0)
	if decision != authz.Allow {
		return "", decision, nil
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return "", decision, err
	}
	if message == nil {
		return "", decision, errs.ErrNotFound
	}

	liked, err := s.likeRepo.Toggle(ctx, *actorID, messageID)
	if err != nil {
		return "", decision, err
	}

	state := Unliked
	eventType := queue.EventLikeDeleted
	if liked {
		state = Liked
		eventType = queue.EventLikeCreated
	}

	event := queue.NewEvent(eventType, queue.LikeEventData{
		UserID:    *actorID,
		MessageID: messageID,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(*actorID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish like event")
	}

	return state, decision, nil
}

func (s *GraphService) LikeCount(ctx context.Context, messageID uint) (int64, error) {
	return s.likeRepo.CountByMessageID(ctx, messageID)
}

func (s *GraphService) LikedBy(ctx context.Context, userID uint) ([]*models.Message, error) {
	return s.likeRepo.GetLikedMessages(ctx, userID)
}

func (s *GraphService) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likeRepo.IsLiked(ctx, userID, messageID)
}
