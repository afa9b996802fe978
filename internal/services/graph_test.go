package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/errs"
	"github.com/warbler-social/warbler/internal/services"
)

func TestFollowSymmetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")

	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	following, err := env.graph.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil || !following {
		t.Fatalf("IsFollowing(alice, bob) = (%v, %v), want true", following, err)
	}
	followedBy, err := env.graph.IsFollowedBy(ctx, bob.ID, alice.ID)
	if err != nil || !followedBy {
		t.Fatalf("IsFollowedBy(bob, alice) = (%v, %v), want true", followedBy, err)
	}
	if reverse, _ := env.graph.IsFollowing(ctx, bob.ID, alice.ID); reverse {
		t.Fatal("follow edge is directed; reverse should be false")
	}

	followers, err := env.graph.Followers(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Followers failed: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != alice.ID {
		t.Fatalf("Followers(bob) = %v, want [alice]", followers)
	}

	followingList, err := env.graph.Following(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(followingList) != 1 || followingList[0].ID != bob.ID {
		t.Fatalf("Following(alice) = %v, want [bob]", followingList)
	}

	if err := env.graph.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	if still, _ := env.graph.IsFollowing(ctx, alice.ID, bob.ID); still {
		t.Fatal("edge survives unfollow")
	}
	followers, _ = env.graph.Followers(ctx, bob.ID)
	followingList, _ = env.graph.Following(ctx, alice.ID)
	if len(followers) != 0 || len(followingList) != 0 {
		t.Fatalf("sets not empty after unfollow: followers=%d following=%d", len(followers), len(followingList))
	}
}

func TestFollowCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	carol := env.signup(t, "carol", "carol@x.com", "secret3")

	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if err := env.graph.Follow(ctx, carol.ID, bob.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	followers, err := env.graph.FollowerCount(ctx, bob.ID)
	if err != nil || followers != 2 {
		t.Fatalf("FollowerCount(bob) = (%d, %v), want 2", followers, err)
	}
	following, err := env.graph.FollowingCount(ctx, bob.ID)
	if err != nil || following != 0 {
		t.Fatalf("FollowingCount(bob) = (%d, %v), want 0", following, err)
	}
	following, err = env.graph.FollowingCount(ctx, alice.ID)
	if err != nil || following != 1 {
		t.Fatalf("FollowingCount(alice) = (%d, %v), want 1", following, err)
	}

	if err := env.graph.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	followers, _ = env.graph.FollowerCount(ctx, bob.ID)
	if followers != 1 {
		t.Fatalf("FollowerCount(bob) after unfollow = %d, want 1", followers)
	}
}

func TestUnfollowMissingEdgeIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")

	if err := env.graph.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow on missing edge errored: %v", err)
	}
}

func TestFollowTwiceIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")

	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("repeated Follow errored: %v", err)
	}

	var count int64
	env.db.Table("follows").Count(&count)
	if count != 1 {
		t.Fatalf("duplicate follow edge created, count = %d", count)
	}
}

func TestFollowMissingTarget(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice", "alice@x.com", "secret1")

	err := env.graph.Follow(context.Background(), alice.ID, 9999)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// Self-follow is currently permitted at the data layer. This pins the
// behavior rather than silently fixing it.
func TestSelfFollowPermitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")

	if err := env.graph.Follow(ctx, alice.ID, alice.ID); err != nil {
		t.Fatalf("self-follow rejected: %v", err)
	}
	if following, _ := env.graph.IsFollowing(ctx, alice.ID, alice.ID); !following {
		t.Fatal("self-follow edge not recorded")
	}
}

func TestToggleLikeLaw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice", "alice@x.com", "secret1")
	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "bob's warble")

	state, decision, err := env.graph.ToggleLike(ctx, &alice.ID, message.ID)
	if err != nil || decision != authz.Allow {
		t.Fatalf("ToggleLike failed: (%v, %v)", decision, err)
	}
	if state != services.Liked {
		t.Fatalf("first toggle = %q, want liked", state)
	}

	count, err := env.graph.LikeCount(ctx, message.ID)
	if err != nil || count != 1 {
		t.Fatalf("LikeCount = (%d, %v), want 1", count, err)
	}

	liked, err := env.graph.LikedBy(ctx, alice.ID)
	if err != nil || len(liked) != 1 || liked[0].ID != message.ID {
		t.Fatalf("LikedBy(alice) = (%v, %v), want [message]", liked, err)
	}

	state, _, err = env.graph.ToggleLike(ctx, &alice.ID, message.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if state != services.Unliked {
		t.Fatalf("second toggle = %q, want unliked", state)
	}

	// Two toggles return the graph to its original state.
	count, _ = env.graph.LikeCount(ctx, message.ID)
	if count != 0 {
		t.Fatalf("LikeCount after double toggle = %d, want 0", count)
	}
	if isLiked, _ := env.graph.IsLiked(ctx, alice.ID, message.ID); isLiked {
		t.Fatal("like edge survives double toggle")
	}
}

// Liking one's own message is currently permitted; pinned deliberately.
func TestSelfLikePermitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "my own warble")

	state, _, err := env.graph.ToggleLike(ctx, &bob.ID, message.ID)
	if err != nil {
		t.Fatalf("self-like rejected: %v", err)
	}
	if state != services.Liked {
		t.Fatalf("self-like toggle = %q, want liked", state)
	}
}

func TestToggleLikeAnonymous(t *testing.T) {
	env := newTestEnv(t)

	bob := env.signup(t, "bob", "bob@x.com", "secret2")
	message := env.post(t, bob.ID, "bob's warble")

	_, decision, err := env.graph.ToggleLike(context.Background(), nil, message.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != authz.RequireLogin {
		t.Fatalf("decision = %v, want RequireLogin", decision)
	}
}

func TestToggleLikeMissingMessage(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice", "alice@x.com", "secret1")

	_, _, err := env.graph.ToggleLike(context.Background(), &alice.ID, 9999)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
