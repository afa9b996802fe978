package services_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/internal/services"
	"github.com/warbler-social/warbler/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// nopPublisher stands in for the Kafka producer.
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return nil
}

type testEnv struct {
	db       *gorm.DB
	users    *services.UserService
	graph    *services.GraphService
	messages *services.MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Follow{}, &models.Message{}, &models.Like{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	log := logger.NewLogger("error")
	producer := nopPublisher{}

	return &testEnv{
		db:       db,
		users:    services.NewUserService(userRepo, producer, log),
		graph:    services.NewGraphService(userRepo, followRepo, likeRepo, messageRepo, producer, log),
		messages: services.NewMessageService(messageRepo, producer, log),
	}
}

func (e *testEnv) signup(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	user, err := e.users.Signup(context.Background(), &services.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Signup(%q) failed: %v", username, err)
	}
	return user
}

func signupReq(username, email, password string) *services.SignupRequest {
	return &services.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}
}

func (e *testEnv) post(t *testing.T, userID uint, text string) *models.Message {
	t.Helper()
	message, _, err := e.messages.Post(context.Background(), &userID, text)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	return message
}
