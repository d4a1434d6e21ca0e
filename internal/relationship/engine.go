// Package relationship owns follow/unfollow state and user lifecycle. A
// follow edge is embedded in both endpoints' documents with no canonical row,
// so every mutation here is a pair of independent single-document writes kept
// consistent by idempotent, order-independent set updates.
package relationship

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/identity"
)

// UsersCollection is the document collection holding user documents.
const UsersCollection = "users"

// ContentCascader is the slice of the content engine DeleteUser needs: wipe
// everything the user authored and strip their id from surviving posts.
type ContentCascader interface {
	DeleteAllForUser(ctx context.Context, userID string) error
}

type Engine struct {
	store   docstore.Store
	content ContentCascader
	clock   clockwork.Clock
}

func NewEngine(store docstore.Store, content ContentCascader, clock clockwork.Clock) *Engine {
	return &Engine{store: store, content: content, clock: clock}
}

// GetUser loads a user document by id.
func (e *Engine) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := e.store.Get(ctx, UsersCollection, id, &u); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// CreateUser registers a new user. The id is the content hash of the
// username, so a duplicate username collides on create; the existing document
// is returned with created=false and the caller renders it as a conflict.
func (e *Engine) CreateUser(ctx context.Context, username string) (*domain.User, bool, error) {
	if !domain.ValidUsername(username) {
		return nil, false, domain.ErrInvalidUsername
	}

	u := domain.User{
		ID:        identity.DeriveID(username),
		Username:  username,
		JoinedAt:  e.clock.Now().UTC(),
		Follows:   []domain.FollowEdge{},
		Followers: []domain.FollowEdge{},
	}

	err := e.store.Create(ctx, UsersCollection, u.ID, u)
	if errors.Is(err, docstore.ErrConflict) {
		existing, getErr := e.GetUser(ctx, u.ID)
		if getErr != nil {
			return nil, false, fmt.Errorf("load conflicting user %s: %w", u.ID, getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", username, err)
	}
	return &u, true, nil
}

// Follow makes follower follow followed. Both sides are appended
// idempotently, keyed by id, so replays and double-submits leave a single
// edge and the original followed_at stands. Returns the follower's updated
// projection.
func (e *Engine) Follow(ctx context.Context, followerID, followedID string) (*domain.User, error) {
	if followerID == followedID {
		return nil, domain.ErrSelfRelation
	}
	if err := e.requireUsers(ctx, followerID, followedID); err != nil {
		return nil, err
	}

	now := e.clock.Now().UTC()
	err := e.store.Update(ctx, UsersCollection, followerID, docstore.Update{
		AppendUnique: map[string]docstore.Member{
			"follows": {ID: followedID, Doc: domain.FollowEdge{ID: followedID, FollowedAt: now}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("append follow edge: %w", err)
	}

	err = e.store.Update(ctx, UsersCollection, followedID, docstore.Update{
		AppendUnique: map[string]docstore.Member{
			"followers": {ID: followerID, Doc: domain.FollowEdge{ID: followerID, FollowedAt: now}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("append follower edge: %w", err)
	}

	return e.GetUser(ctx, followerID)
}

// Unfollow removes the edge from both sides. Removing an absent edge is a
// safe no-op, so unfollowing someone never followed just returns the current
// projection.
func (e *Engine) Unfollow(ctx context.Context, followerID, followedID string) (*domain.User, error) {
	if followerID == followedID {
		return nil, domain.ErrSelfRelation
	}
	if err := e.requireUsers(ctx, followerID, followedID); err != nil {
		return nil, err
	}

	err := e.store.Update(ctx, UsersCollection, followerID, docstore.Update{
		RemoveID: map[string]string{"follows": followedID},
	})
	if err != nil {
		return nil, fmt.Errorf("remove follow edge: %w", err)
	}

	err = e.store.Update(ctx, UsersCollection, followedID, docstore.Update{
		RemoveID: map[string]string{"followers": followerID},
	})
	if err != nil {
		return nil, fmt.Errorf("remove follower edge: %w", err)
	}

	return e.GetUser(ctx, followerID)
}

// DeleteUser removes the user and every reference to them. The steps are
// independent round-trips with no transaction around them; each one is
// idempotent so a rerun after a mid-sequence crash converges instead of
// corrupting. Returns the user's pre-delete projection with cleared arrays.
func (e *Engine) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := e.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	steps := []step{}
	for _, edge := range u.Follows {
		target := edge.ID
		steps = append(steps, step{
			name: "strip follower back-reference",
			run: func(ctx context.Context) error {
				return e.store.Update(ctx, UsersCollection, target, docstore.Update{
					RemoveID: map[string]string{"followers": id},
				})
			},
		})
	}
	for _, edge := range u.Followers {
		target := edge.ID
		steps = append(steps, step{
			name: "strip follow back-reference",
			run: func(ctx context.Context) error {
				return e.store.Update(ctx, UsersCollection, target, docstore.Update{
					RemoveID: map[string]string{"follows": id},
				})
			},
		})
	}
	steps = append(steps,
		step{
			name: "cascade content",
			run: func(ctx context.Context) error {
				return e.content.DeleteAllForUser(ctx, id)
			},
		},
		step{
			name: "clear edge arrays",
			run: func(ctx context.Context) error {
				return e.store.Update(ctx, UsersCollection, id, docstore.Update{
					Set: map[string]any{
						"follows":   []domain.FollowEdge{},
						"followers": []domain.FollowEdge{},
					},
				})
			},
		},
		step{
			name: "delete user document",
			run: func(ctx context.Context) error {
				err := e.store.Delete(ctx, UsersCollection, id)
				if errors.Is(err, docstore.ErrNotFound) {
					return nil
				}
				return err
			},
		},
	)

	if err := runCascade(ctx, "delete_user", steps); err != nil {
		return nil, err
	}

	u.Follows = []domain.FollowEdge{}
	u.Followers = []domain.FollowEdge{}
	return u, nil
}

// requireUsers checks both endpoints exist before touching either document.
func (e *Engine) requireUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		ok, err := e.store.Exists(ctx, UsersCollection, id)
		if err != nil {
			return fmt.Errorf("check user %s: %w", id, err)
		}
		if !ok {
			return domain.ErrUserNotFound
		}
	}
	return nil
}
