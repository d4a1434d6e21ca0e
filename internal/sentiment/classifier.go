// Package sentiment holds the text classifier and the prevalence quantifier
// built on top of its stored predictions.
package sentiment

import (
	"context"
	"strings"

	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/metrics"
)

// Classifier assigns a sentiment label with a confidence to a piece of text.
type Classifier interface {
	Predict(ctx context.Context, text string) (domain.Sentiment, error)
}

// LexiconClassifier scores text by counting polarity words. Deterministic on
// purpose: the same text always classifies the same way, which keeps
// republish-dedup consistent with the stored document.
type LexiconClassifier struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

var (
	positiveWords = []string{
		"good", "great", "nice", "love", "happy", "awesome", "excellent",
		"amazing", "best", "wonderful", "fantastic", "fun", "win", "cool",
	}
	negativeWords = []string{
		"bad", "terrible", "hate", "sad", "awful", "horrible", "worst",
		"angry", "annoying", "fail", "broken", "ugly", "boring", "lose",
	}
)

func NewLexiconClassifier() *LexiconClassifier {
	c := &LexiconClassifier{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
	}
	for _, w := range positiveWords {
		c.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		c.negative[w] = struct{}{}
	}
	return c
}

func (c *LexiconClassifier) Predict(_ context.Context, text string) (domain.Sentiment, error) {
	if text == "" {
		return domain.Sentiment{}, domain.ErrEmptyText
	}

	var score int
	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		w = strings.Trim(w, ".,!?#@:;\"'")
		if _, ok := c.positive[w]; ok {
			score++
		}
		if _, ok := c.negative[w]; ok {
			score--
		}
	}

	s := domain.Sentiment{Label: domain.LabelNeutral, Confidence: 0.5}
	switch {
	case score > 0:
		s.Label = domain.LabelPositive
	case score < 0:
		s.Label = domain.LabelNegative
	}
	if score != 0 {
		// more polarity hits, more confidence, capped short of certainty
		s.Confidence = 0.6 + 0.1*float64(min(abs(score), 3))
	}

	metrics.ClassifierPredictionsTotal.WithLabelValues(string(s.Label)).Inc()
	return s, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
