package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/errs"
)

func TestPostMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")

	message, decision, err := env.messages.Post(ctx, &alice.ID, "This is a warble")
	if err != nil || decision != authz.Allow {
		t.Fatalf("Post failed: (%v, %v)", decision, err)
	}
	if message.UserID != alice.ID {
		t.Fatalf("message owner = %d, want %d", message.UserID, alice.ID)
	}
	if message.CreatedAt.IsZero() {
		t.Fatal("creation timestamp not set")
	}

	got, err := env.messages.GetByID(ctx, message.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Text != "This is a warble" {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestPostMessageAnonymous(t *testing.T) {
	env := newTestEnv(t)

	_, decision, err := env.messages.Post(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != authz.RequireLogin {
		t.Fatalf("decision = %v, want RequireLogin", decision)
	}
}

func TestPostMessageTextBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")

	if _, _, err := env.messages.Post(ctx, &alice.ID, ""); !errors.Is(err, errs.ErrTextRequired) {
		t.Fatalf("empty text: got %v, want ErrTextRequired", err)
	}

	long := strings.Repeat("a", 141)
	if _, _, err := env.messages.Post(ctx, &alice.ID, long); !errors.Is(err, errs.ErrTextTooLong) {
		t.Fatalf("141 chars: got %v, want ErrTextTooLong", err)
	}

	// Exactly 140 is allowed.
	if _, _, err := env.messages.Post(ctx, &alice.ID, strings.Repeat("a", 140)); err != nil {
		t.Fatalf("140 chars rejected: %v", err)
	}
}

func TestDeleteMessageByOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "delete me")

	decision, err := env.messages.Delete(ctx, &bob.ID, message.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if decision != authz.Allow {
		t.Fatalf("decision = %v, want Allow", decision)
	}

	if _, err := env.messages.GetByID(ctx, message.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("message still retrievable after owner delete: %v", err)
	}
}

func TestDeleteMessageWrongOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	carol := env.signup(t, "carol", "carol@x.com", "secret3")
	message := env.post(t, bob.ID, "you can't delete me")

	decision, err := env.messages.Delete(ctx, &carol.ID, message.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != authz.Deny {
		t.Fatalf("decision = %v, want Deny", decision)
	}

	// Message is left intact.
	got, err := env.messages.GetByID(ctx, message.ID)
	if err != nil || got == nil {
		t.Fatalf("message gone after denied delete: (%v, %v)", got, err)
	}
}

func TestDeleteMessageAnonymous(t *testing.T) {
	env := newTestEnv(t)

	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "still here")

	decision, err := env.messages.Delete(context.Background(), nil, message.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != authz.RequireLogin {
		t.Fatalf("decision = %v, want RequireLogin", decision)
	}
}

func TestDeleteMissingMessage(t *testing.T) {
	env := newTestEnv(t)

	bob := env.signup(t, "bob", "bob@x.com", "secret2")

	_, err := env.messages.Delete(context.Background(), &bob.ID, 9999)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteMessageRemovesLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "liked then deleted")

	if _, _, err := env.graph.ToggleLike(ctx, &alice.ID, message.ID); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	if _, err := env.messages.Delete(ctx, &bob.ID, message.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var likes int64
	env.db.Table("likes").Where("message_id = ?", message.ID).Count(&likes)
	if likes != 0 {
		t.Fatalf("likes on deleted message remain: %d", likes)
	}
}
