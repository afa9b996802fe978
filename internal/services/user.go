package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/warbler-social/warbler/internal/errs"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// syntheticHash is a bcrypt hash of a value no caller can provide. When a
// username does not exist, Authenticate still verifies the supplied password
// against this hash so the miss takes the same time as a wrong password and
// usernames cannot be enumerated through timing.
var syntheticHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

type UserService struct {
	userRepo *repository.UserRepository
	producer queue.Publisher
	logger   *logger.Logger
}

func NewUserService(userRepo *repository.UserRepository, producer queue.Publisher, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	ImageURL string `json:"image_url"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the editable profile fields. Password is the
// account's current password; the edit is refused without it.
type UpdateProfileRequest struct {
	Password       string `json:"password" binding:"required"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

// NewUser validates credentials and hashes the password, returning an
// unpersisted user. Validation runs before any hashing; the plaintext is
// never stored anywhere.
func (s *UserService) NewUser(username, email, password, imageURL string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, errs.ErrCredentialInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		ImageURL: imageURL,
	}, nil
}

// Signup builds and commits a new user. Duplicate username or email is not
// pre-checked; the commit surfaces errs.ErrUniquenessViolation from the
// storage constraint so concurrent signups cannot both pass a lookup.
func (s *UserService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	user, err := s.NewUser(req.Username, req.Email, req.Password, req.ImageURL)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	event := queue.NewEvent(queue.EventUserCreated, queue.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(user.ID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user created event")
	}

	s.logger.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Authenticate returns the user on a username/password match and (nil, nil)
// otherwise. A missing user and a wrong password are deliberately
// indistinguishable, and both paths run a bcrypt verification.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(syntheticHash, []byte(password))
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrNotFound
	}
	return user, nil
}

// UpdateProfile edits a user's profile after re-verifying their password.
// A wrong password returns (nil, nil), the same shape Authenticate uses for
// a failed login. A username or email left blank keeps its current value.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.ImageURL = req.ImageURL
	user.HeaderImageURL = req.HeaderImageURL
	user.Bio = req.Bio
	user.Location = req.Location

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User profile updated")
	return user, nil
}

// DeleteAccount removes the user and, in the same transaction, their
// messages, every follow edge touching them, their likes, and likes on
// their messages.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.ErrNotFound
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventUserDeleted, queue.UserEventData{
		UserID:   userID,
		Username: user.Username,
	})
	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(userID), 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user deleted event")
	}

	s.logger.WithField("user_id", userID).Info("User account deleted")
	return nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	return s.userRepo.List(ctx, offset, limit)
}

func (s *UserService) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, error) {
	return s.userRepo.Search(ctx, query, offset, limit)
}
