package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/metrics"
)

// DeleteAllForUser erases every trace of the user from the posts collection:
// their originals and the reposts thereof, their own reposts, and their
// like/retweet marks on surviving originals. Runs as ordered independent
// writes; each is idempotent so the cascade can be retried after a partial
// failure.
func (e *Engine) DeleteAllForUser(ctx context.Context, userID string) error {
	const cascade = "delete_user_content"

	var authored []postDoc
	q := docstore.Query{Eq: map[string]string{"kind": string(domain.KindOriginal), "author_id": userID}}
	if err := e.store.Search(ctx, TweetsCollection, q, &authored); err != nil {
		metrics.CascadeStepsTotal.WithLabelValues(cascade, "error").Inc()
		return fmt.Errorf("search authored posts: %w", err)
	}
	authoredIDs := make([]string, 0, len(authored))
	for _, doc := range authored {
		authoredIDs = append(authoredIDs, doc.ID)
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"delete reposts of authored posts", func(ctx context.Context) error {
			if len(authoredIDs) == 0 {
				return nil
			}
			_, err := e.store.DeleteByQuery(ctx, TweetsCollection, docstore.Query{
				Eq: map[string]string{"kind": string(domain.KindRepost)},
				In: map[string][]string{"tweet_id": authoredIDs},
			})
			return err
		}},
		{"delete authored posts", func(ctx context.Context) error {
			_, err := e.store.DeleteByQuery(ctx, TweetsCollection, docstore.Query{
				Eq: map[string]string{"kind": string(domain.KindOriginal), "author_id": userID},
			})
			return err
		}},
		{"delete own reposts", func(ctx context.Context) error {
			_, err := e.store.DeleteByQuery(ctx, TweetsCollection, docstore.Query{
				Eq: map[string]string{"kind": string(domain.KindRepost), "user_id": userID},
			})
			return err
		}},
		{"pull retweet marks", func(ctx context.Context) error {
			_, err := e.store.UpdateByQuery(ctx, TweetsCollection,
				docstore.Query{MemberID: map[string]string{"retweets": userID}},
				docstore.Update{RemoveID: map[string]string{"retweets": userID}})
			return err
		}},
		{"pull like marks", func(ctx context.Context) error {
			_, err := e.store.UpdateByQuery(ctx, TweetsCollection,
				docstore.Query{MemberID: map[string]string{"likes": userID}},
				docstore.Update{RemoveID: map[string]string{"likes": userID}})
			return err
		}},
	}

	for i, s := range steps {
		if err := s.run(ctx); err != nil {
			metrics.CascadeStepsTotal.WithLabelValues(cascade, "error").Inc()
			slog.ErrorContext(ctx, "content cascade step failed",
				"cascade", cascade,
				"step", s.name,
				"index", i,
				"user_id", userID,
				"error", err)
			return fmt.Errorf("cascade %s, step %q: %w", cascade, s.name, err)
		}
		metrics.CascadeStepsTotal.WithLabelValues(cascade, "ok").Inc()
	}
	return nil
}
