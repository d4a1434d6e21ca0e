package sentiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"

	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/metrics"
	"github.com/socialdoc/flock/internal/relationship"
)

const tweetsCollection = "tweets"

// Prevalence is the sentiment distribution of a slice of posts. Without a
// confusion profile the values are the raw label counts; with one they form
// a bias-corrected probability vector summing to 1.
type Prevalence struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Quantifier aggregates stored predictions into a prevalence estimate,
// correcting the raw histogram with the classifier's confusion profile.
// Results are cached under a TTL and concurrent identical queries collapse
// into one store scan.
type Quantifier struct {
	store docstore.Store
	rates *Rates
	cache *resultCache
	group singleflight.Group
}

// NewQuantifier builds a Quantifier. A nil rates profile disables bias
// correction and leaves the raw counts untouched.
func NewQuantifier(store docstore.Store, rates *Rates, cacheTTL time.Duration, clock clockwork.Clock) *Quantifier {
	return &Quantifier{
		store: store,
		rates: rates,
		cache: newResultCache(cacheTTL, clock),
	}
}

// StartCacheEviction begins the periodic cache cleanup, stopped via ctx.
func (q *Quantifier) StartCacheEviction(ctx context.Context, interval time.Duration) {
	q.cache.StartEviction(ctx, interval)
}

// QuantifyUser estimates the sentiment prevalence of the user's authored
// posts in [from, to). Zero bounds leave the window open on that side.
func (q *Quantifier) QuantifyUser(ctx context.Context, userID string, from, to time.Time) (Prevalence, error) {
	ok, err := q.store.Exists(ctx, relationship.UsersCollection, userID)
	if err != nil {
		return Prevalence{}, fmt.Errorf("check user %s: %w", userID, err)
	}
	if !ok {
		return Prevalence{}, domain.ErrUserNotFound
	}

	key := cacheKey("user", userID, from, to)
	query := docstore.Query{
		Eq:    map[string]string{"kind": string(domain.KindOriginal), "author_id": userID},
		Range: window(from, to),
	}
	return q.quantify(ctx, key, query)
}

// QuantifyHashtag estimates the sentiment prevalence of posts carrying the
// hashtag in [from, to). Unknown hashtags yield an all-zero prevalence.
func (q *Quantifier) QuantifyHashtag(ctx context.Context, hashtag string, from, to time.Time) (Prevalence, error) {
	key := cacheKey("hashtag", hashtag, from, to)
	query := docstore.Query{
		Eq:    map[string]string{"kind": string(domain.KindOriginal), "hashtags": hashtag},
		Range: window(from, to),
	}
	return q.quantify(ctx, key, query)
}

func (q *Quantifier) quantify(ctx context.Context, key string, query docstore.Query) (Prevalence, error) {
	if p, ok := q.cache.Get(key); ok {
		metrics.QuantifyCacheHits.Inc()
		return p, nil
	}
	metrics.QuantifyCacheMisses.Inc()

	v, err, _ := q.group.Do(key, func() (any, error) {
		counts, err := q.store.CountByField(ctx, tweetsCollection, query, "sentiment.label")
		if err != nil {
			return Prevalence{}, fmt.Errorf("count sentiment labels: %w", err)
		}
		p := q.correct(counts)
		q.cache.Set(key, p)
		return p, nil
	})
	if err != nil {
		return Prevalence{}, err
	}
	return v.(Prevalence), nil
}

// correct turns the raw label histogram into a prevalence estimate. Without
// a profile it passes the counts through. With one it normalizes the
// histogram to a probability vector, solves rates · true = observed, clips
// the solution to [0, 1] (NaN becomes 0) and renormalizes to sum 1. A
// singular profile falls back to the raw counts.
func (q *Quantifier) correct(counts map[string]int64) Prevalence {
	raw := Prevalence{
		Negative: float64(counts[string(domain.LabelNegative)]),
		Neutral:  float64(counts[string(domain.LabelNeutral)]),
		Positive: float64(counts[string(domain.LabelPositive)]),
	}
	if q.rates == nil {
		return raw
	}

	total := raw.Negative + raw.Neutral + raw.Positive
	if total == 0 {
		return Prevalence{}
	}
	observed := mat.NewVecDense(3, []float64{
		raw.Negative / total,
		raw.Neutral / total,
		raw.Positive / total,
	})

	var solved mat.VecDense
	if err := solved.SolveVec(q.rates.matrix(), observed); err != nil {
		metrics.BiasCorrectionFallbacks.Inc()
		return raw
	}

	neg := clipUnit(solved.AtVec(0))
	neu := clipUnit(solved.AtVec(1))
	pos := clipUnit(solved.AtVec(2))
	sum := neg + neu + pos
	if sum == 0 {
		return Prevalence{}
	}
	return Prevalence{Negative: neg / sum, Neutral: neu / sum, Positive: pos / sum}
}

// clipUnit pins a solved component into [0, 1]; NaN counts as 0.
func clipUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func window(from, to time.Time) *docstore.Range {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	return &docstore.Range{Field: "tweeted_at", From: from, To: to}
}

func cacheKey(scope, id string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%d", scope, id, from.UnixNano(), to.UnixNano())
}
