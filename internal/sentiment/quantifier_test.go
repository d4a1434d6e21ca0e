package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/relationship"
)

type tweetFixture struct {
	ID        string           `json:"id"`
	Kind      string           `json:"kind"`
	AuthorID  string           `json:"author_id"`
	TweetedAt time.Time        `json:"tweeted_at"`
	Hashtags  []string         `json:"hashtags"`
	Sentiment domain.Sentiment `json:"sentiment"`
}

func seedTweet(t *testing.T, store *docstore.Memory, id, authorID string, at time.Time, label domain.Label, hashtags ...string) {
	t.Helper()
	if hashtags == nil {
		hashtags = []string{}
	}
	doc := tweetFixture{
		ID:        id,
		Kind:      string(domain.KindOriginal),
		AuthorID:  authorID,
		TweetedAt: at,
		Hashtags:  hashtags,
		Sentiment: domain.Sentiment{Label: label, Confidence: 0.8},
	}
	require.NoError(t, store.Create(context.Background(), tweetsCollection, id, doc))
}

func seedQuantifyUser(t *testing.T, store *docstore.Memory, id string) {
	t.Helper()
	u := domain.User{ID: id, Username: id, Follows: []domain.FollowEdge{}, Followers: []domain.FollowEdge{}}
	require.NoError(t, store.Create(context.Background(), relationship.UsersCollection, id, u))
}

func day(d int) time.Time {
	return time.Date(2022, 5, d, 10, 0, 0, 0, time.UTC)
}

func TestQuantifier_QuantifyUser_NoRatesGivesRawCounts(t *testing.T) {
	store := docstore.NewMemory()
	clock := clockwork.NewFakeClock()
	q := NewQuantifier(store, nil, time.Minute, clock)

	seedQuantifyUser(t, store, "u1")
	seedTweet(t, store, "t1", "u1", day(1), domain.LabelNegative)
	seedTweet(t, store, "t2", "u1", day(2), domain.LabelNeutral)
	seedTweet(t, store, "t3", "u1", day(3), domain.LabelPositive)
	seedTweet(t, store, "t4", "u1", day(3), domain.LabelPositive)
	seedTweet(t, store, "other", "u2", day(3), domain.LabelPositive)

	p, err := q.QuantifyUser(context.Background(), "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 1, p.Negative, 1e-9)
	assert.InDelta(t, 1, p.Neutral, 1e-9)
	assert.InDelta(t, 2, p.Positive, 1e-9)
}

func TestQuantifier_QuantifyUser_IdentityRatesNormalize(t *testing.T) {
	store := docstore.NewMemory()
	q := NewQuantifier(store, IdentityRates(), time.Minute, clockwork.NewFakeClock())

	seedQuantifyUser(t, store, "u1")
	seedTweet(t, store, "t1", "u1", day(1), domain.LabelNegative)
	seedTweet(t, store, "t2", "u1", day(2), domain.LabelNeutral)
	seedTweet(t, store, "t3", "u1", day(3), domain.LabelPositive)
	seedTweet(t, store, "t4", "u1", day(3), domain.LabelPositive)

	// identity profile: correction is exactly the normalized histogram
	p, err := q.QuantifyUser(context.Background(), "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p.Negative, 1e-9)
	assert.InDelta(t, 0.25, p.Neutral, 1e-9)
	assert.InDelta(t, 0.5, p.Positive, 1e-9)
	assert.InDelta(t, 1, p.Negative+p.Neutral+p.Positive, 1e-9)
}

func TestQuantifier_QuantifyUser_UnknownUser(t *testing.T) {
	store := docstore.NewMemory()
	q := NewQuantifier(store, nil, time.Minute, clockwork.NewFakeClock())

	_, err := q.QuantifyUser(context.Background(), "missing", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestQuantifier_QuantifyUser_DateWindow(t *testing.T) {
	store := docstore.NewMemory()
	q := NewQuantifier(store, nil, time.Minute, clockwork.NewFakeClock())

	seedQuantifyUser(t, store, "u1")
	seedTweet(t, store, "t1", "u1", day(1), domain.LabelNegative)
	seedTweet(t, store, "t2", "u1", day(2), domain.LabelNeutral)
	seedTweet(t, store, "t3", "u1", day(3), domain.LabelPositive)

	// [day 2, day 3): only the neutral post falls inside
	from := time.Date(2022, 5, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 5, 3, 0, 0, 0, 0, time.UTC)

	p, err := q.QuantifyUser(context.Background(), "u1", from, to)
	require.NoError(t, err)
	assert.InDelta(t, 0, p.Negative, 1e-9)
	assert.InDelta(t, 1, p.Neutral, 1e-9)
	assert.InDelta(t, 0, p.Positive, 1e-9)
}

func TestQuantifier_QuantifyHashtag(t *testing.T) {
	store := docstore.NewMemory()
	q := NewQuantifier(store, nil, time.Minute, clockwork.NewFakeClock())

	seedTweet(t, store, "t1", "u1", day(1), domain.LabelPositive, "friday", "mood")
	seedTweet(t, store, "t2", "u2", day(2), domain.LabelNegative, "friday")
	seedTweet(t, store, "t3", "u3", day(3), domain.LabelPositive, "monday")

	p, err := q.QuantifyHashtag(context.Background(), "friday", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 1, p.Negative, 1e-9)
	assert.InDelta(t, 0, p.Neutral, 1e-9)
	assert.InDelta(t, 1, p.Positive, 1e-9)
}

func TestQuantifier_QuantifyHashtag_Unknown(t *testing.T) {
	store := docstore.NewMemory()
	q := NewQuantifier(store, nil, time.Minute, clockwork.NewFakeClock())

	p, err := q.QuantifyHashtag(context.Background(), "ghost", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, Prevalence{}, p)
}

func TestQuantifier_BiasCorrection(t *testing.T) {
	store := docstore.NewMemory()
	// a classifier that leaks 20% of each polar class into neutral
	rates := Rates{
		Negative: ClassRates{Negative: 0.8, Neutral: 0.2},
		Neutral:  ClassRates{Neutral: 1},
		Positive: ClassRates{Neutral: 0.2, Positive: 0.8},
	}
	q := NewQuantifier(store, &rates, time.Minute, clockwork.NewFakeClock())

	// observed histogram: 8 negative, 4 neutral, 8 positive. With the profile
	// above that is exactly what an all-polar, evenly split population yields,
	// so the corrected prevalence puts half on each polar class.
	for i := 0; i < 8; i++ {
		seedTweet(t, store, fixtureID("neg", i), "u1", day(1), domain.LabelNegative, "bias")
		seedTweet(t, store, fixtureID("pos", i), "u1", day(1), domain.LabelPositive, "bias")
	}
	for i := 0; i < 4; i++ {
		seedTweet(t, store, fixtureID("neu", i), "u1", day(1), domain.LabelNeutral, "bias")
	}

	p, err := q.QuantifyHashtag(context.Background(), "bias", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Negative, 1e-6)
	assert.InDelta(t, 0, p.Neutral, 1e-6)
	assert.InDelta(t, 0.5, p.Positive, 1e-6)
	assert.InDelta(t, 1, p.Negative+p.Neutral+p.Positive, 1e-6)
}

func TestQuantifier_BiasCorrection_SingularFallsBackToRaw(t *testing.T) {
	store := docstore.NewMemory()
	// every class maps to negative; the system has no unique solution
	rates := Rates{
		Negative: ClassRates{Negative: 1},
		Neutral:  ClassRates{Negative: 1},
		Positive: ClassRates{Negative: 1},
	}
	q := NewQuantifier(store, &rates, time.Minute, clockwork.NewFakeClock())

	seedTweet(t, store, "t1", "u1", day(1), domain.LabelNegative, "broken")
	seedTweet(t, store, "t2", "u1", day(1), domain.LabelPositive, "broken")

	p, err := q.QuantifyHashtag(context.Background(), "broken", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 1, p.Negative, 1e-9)
	assert.InDelta(t, 0, p.Neutral, 1e-9)
	assert.InDelta(t, 1, p.Positive, 1e-9)
}

func TestQuantifier_CachesWithinTTL(t *testing.T) {
	store := docstore.NewMemory()
	clock := clockwork.NewFakeClock()
	q := NewQuantifier(store, nil, 30*time.Second, clock)

	seedTweet(t, store, "t1", "u1", day(1), domain.LabelPositive, "cached")

	first, err := q.QuantifyHashtag(context.Background(), "cached", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 1, first.Positive, 1e-9)

	// new data is invisible until the entry expires
	seedTweet(t, store, "t2", "u2", day(2), domain.LabelPositive, "cached")

	second, err := q.QuantifyHashtag(context.Background(), "cached", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 1, second.Positive, 1e-9)

	clock.Advance(time.Minute)

	third, err := q.QuantifyHashtag(context.Background(), "cached", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 2, third.Positive, 1e-9)
}

func TestResultCache_EvictExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newResultCache(10*time.Second, clock)

	cache.Set("a", Prevalence{Positive: 1})
	cache.Set("b", Prevalence{Negative: 1})

	clock.Advance(5 * time.Second)
	cache.Set("c", Prevalence{Neutral: 1})

	clock.Advance(6 * time.Second)
	evicted := cache.EvictExpired()
	assert.Equal(t, 2, evicted)

	_, ok := cache.Get("a")
	assert.False(t, ok)
	got, ok := cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, Prevalence{Neutral: 1}, got)
}

func fixtureID(prefix string, i int) string {
	return prefix + string(rune('a'+i))
}
