// Package session maps opaque tokens to user ids. The token is the single
// source of truth for "who is acting"; everything else resolves identity
// through CurrentUser.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/cache"
)

const keyPrefix = "session:"

type Store struct {
	cache    *cache.RedisClient
	userRepo *repository.UserRepository
	ttl      time.Duration
}

func NewStore(cache *cache.RedisClient, userRepo *repository.UserRepository, ttl time.Duration) *Store {
	return &Store{
		cache:    cache,
		userRepo: userRepo,
		ttl:      ttl,
	}
}

// Login establishes token -> user id and returns the token. Each call mints
// a fresh token; re-login from the same client simply supersedes the old
// mapping on the caller's side.
func (s *Store) Login(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(ctx, keyPrefix+token, userID, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Logout clears the mapping. Clearing an already-empty session is not an
// error.
func (s *Store) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.cache.Delete(ctx, keyPrefix+token); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser resolves a token to a live user record. A token that maps to
// a deleted account is treated as anonymous and the stale mapping is
// cleared.
func (s *Store) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	value, err := s.cache.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, cache.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed session value: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, uint(userID))
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Deleted account; drop the stale mapping.
		_ = s.cache.Delete(ctx, keyPrefix+token)
		return nil, nil
	}

	// Sliding expiry: each resolved request restarts the TTL window, so
	// active sessions outlive the initial ttl while idle ones lapse.
	if err := s.cache.Expire(ctx, keyPrefix+token, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return user, nil
}
