// Package content owns posts: authored originals, reposts referencing them,
// and like/retweet edges embedded in the original's document. Both variants
// live in one collection discriminated by a kind field, so a single id lookup
// resolves either.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/identity"
	"github.com/socialdoc/flock/internal/relationship"
)

// TweetsCollection is the document collection holding both post variants.
const TweetsCollection = "tweets"

// Classifier assigns a sentiment to post text at publish time.
type Classifier interface {
	Predict(ctx context.Context, text string) (domain.Sentiment, error)
}

type Engine struct {
	store      docstore.Store
	classifier Classifier
	clock      clockwork.Clock
}

func NewEngine(store docstore.Store, classifier Classifier, clock clockwork.Clock) *Engine {
	return &Engine{store: store, classifier: classifier, clock: clock}
}

// Get resolves an id to either post variant.
func (e *Engine) Get(ctx context.Context, id string) (*domain.Post, error) {
	var doc postDoc
	if err := e.store.Get(ctx, TweetsCollection, id, &doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return doc.toPost(), nil
}

// Publish creates an original post for the author. The id is derived from
// text plus the author's username, so republishing identical text resolves to
// the existing document, returned with created=false.
func (e *Engine) Publish(ctx context.Context, authorID, text string) (*domain.Original, bool, error) {
	if text == "" {
		return nil, false, domain.ErrEmptyText
	}

	var author domain.User
	if err := e.store.Get(ctx, relationship.UsersCollection, authorID, &author); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, false, domain.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("get author %s: %w", authorID, err)
	}

	id := identity.DeriveID(text + author.Username)
	if existing, err := e.getOriginal(ctx, id); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrPostNotFound) {
		return nil, false, err
	}

	sentiment, err := e.classifier.Predict(ctx, text)
	if err != nil {
		return nil, false, fmt.Errorf("classify post: %w", err)
	}

	original := domain.Original{
		ID:        id,
		AuthorID:  authorID,
		TweetedAt: e.clock.Now().UTC(),
		Text:      text,
		Sentiment: sentiment,
		Hashtags:  domain.ExtractHashtags(text),
		Retweets:  []domain.RetweetEdge{},
		Likes:     []domain.LikeEdge{},
	}

	err = e.store.Create(ctx, TweetsCollection, id, originalDoc{Original: original, Kind: domain.KindOriginal})
	if errors.Is(err, docstore.ErrConflict) {
		// lost a publish race; the winner's document is the answer
		existing, getErr := e.getOriginal(ctx, id)
		if getErr != nil {
			return nil, false, fmt.Errorf("load conflicting post %s: %w", id, getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create post %s: %w", id, err)
	}
	return &original, true, nil
}

// Retweet creates a repost of tweetID by userID and marks the edge on the
// original. Only originals can be retweeted, and not by their own author.
// Retweeting the same original twice returns the existing repost with
// created=false.
func (e *Engine) Retweet(ctx context.Context, userID, tweetID string) (*domain.Repost, bool, error) {
	if err := e.requireUser(ctx, userID); err != nil {
		return nil, false, err
	}
	target, err := e.Get(ctx, tweetID)
	if err != nil {
		return nil, false, err
	}
	if target.Kind == domain.KindRepost {
		return nil, false, domain.ErrRepostTarget
	}
	if target.Original.AuthorID == userID {
		return nil, false, domain.ErrSelfRetweet
	}

	now := e.clock.Now().UTC()
	err = e.store.Update(ctx, TweetsCollection, tweetID, docstore.Update{
		AppendUnique: map[string]docstore.Member{
			"retweets": {ID: userID, Doc: domain.RetweetEdge{ID: userID, RetweetedAt: now}},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("mark retweet edge: %w", err)
	}

	repost := domain.Repost{
		ID:           identity.DeriveID(tweetID + userID),
		UserID:       userID,
		ReferencedAt: now,
		TweetID:      tweetID,
	}
	err = e.store.Create(ctx, TweetsCollection, repost.ID, repostDoc{Repost: repost, Kind: domain.KindRepost})
	if errors.Is(err, docstore.ErrConflict) {
		existing, getErr := e.Get(ctx, repost.ID)
		if getErr != nil {
			return nil, false, fmt.Errorf("load conflicting repost %s: %w", repost.ID, getErr)
		}
		return existing.Repost, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create repost %s: %w", repost.ID, err)
	}
	return &repost, true, nil
}

// Like marks userID's like on an original and returns the updated document.
// Liking twice is a no-op; liking a repost is rejected.
func (e *Engine) Like(ctx context.Context, userID, tweetID string) (*domain.Original, error) {
	if err := e.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	target, err := e.Get(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if target.Kind == domain.KindRepost {
		return nil, domain.ErrRepostTarget
	}

	err = e.store.Update(ctx, TweetsCollection, tweetID, docstore.Update{
		AppendUnique: map[string]docstore.Member{
			"likes": {ID: userID, Doc: domain.LikeEdge{ID: userID, LikedAt: e.clock.Now().UTC()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mark like edge: %w", err)
	}
	return e.getOriginal(ctx, tweetID)
}

// ListByUser returns the originals authored by the user, newest last by id
// order. The user must exist; an empty timeline is a valid answer.
func (e *Engine) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	if err := e.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var docs []postDoc
	q := docstore.Query{Eq: map[string]string{"kind": string(domain.KindOriginal), "author_id": userID}}
	if err := e.store.Search(ctx, TweetsCollection, q, &docs); err != nil {
		return nil, fmt.Errorf("search posts of %s: %w", userID, err)
	}

	posts := make([]domain.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, *doc.toPost())
	}
	return posts, nil
}

// Delete removes a post of either kind and repairs references: deleting a
// repost pulls its edge from the original, deleting an original takes its
// reposts with it. Returns the pre-delete projection.
func (e *Engine) Delete(ctx context.Context, id string) (*domain.Post, error) {
	post, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Kind == domain.KindRepost {
		err := e.store.Update(ctx, TweetsCollection, post.Repost.TweetID, docstore.Update{
			RemoveID: map[string]string{"retweets": post.Repost.UserID},
		})
		if err != nil {
			return nil, fmt.Errorf("pull retweet edge: %w", err)
		}
	} else {
		q := docstore.Query{Eq: map[string]string{"kind": string(domain.KindRepost), "tweet_id": id}}
		if _, err := e.store.DeleteByQuery(ctx, TweetsCollection, q); err != nil {
			return nil, fmt.Errorf("delete reposts of %s: %w", id, err)
		}
	}

	if err := e.store.Delete(ctx, TweetsCollection, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("delete post %s: %w", id, err)
	}
	return post, nil
}

func (e *Engine) getOriginal(ctx context.Context, id string) (*domain.Original, error) {
	post, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Kind != domain.KindOriginal {
		return nil, domain.ErrPostNotFound
	}
	return post.Original, nil
}

func (e *Engine) requireUser(ctx context.Context, id string) error {
	ok, err := e.store.Exists(ctx, relationship.UsersCollection, id)
	if err != nil {
		return fmt.Errorf("check user %s: %w", id, err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}
