package domain

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// PostKind discriminates the two post variants stored in the same collection.
type PostKind string

const (
	KindOriginal PostKind = "tweet"
	KindRepost   PostKind = "retweet"
)

// Label is a sentiment class assigned by the classifier.
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Sentiment is the classifier's verdict stored alongside an original post.
type Sentiment struct {
	Label      Label   `json:"label" bson:"label"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// RetweetEdge marks a user who reposted an original.
type RetweetEdge struct {
	ID          string    `json:"id" bson:"id"`
	RetweetedAt time.Time `json:"retweeted_at" bson:"retweeted_at"`
}

// LikeEdge marks a user who liked an original.
type LikeEdge struct {
	ID      string    `json:"id" bson:"id"`
	LikedAt time.Time `json:"liked_at" bson:"liked_at"`
}

// Original is a first-class authored post. Its id is derived from text plus
// the author's username, so identical text by the same author dedupes to one
// document.
type Original struct {
	ID        string        `json:"id" bson:"_id"`
	AuthorID  string        `json:"author_id" bson:"author_id"`
	TweetedAt time.Time     `json:"tweeted_at" bson:"tweeted_at"`
	Text      string        `json:"text" bson:"text"`
	Sentiment Sentiment     `json:"sentiment" bson:"sentiment"`
	Hashtags  []string      `json:"hashtags" bson:"hashtags"`
	Retweets  []RetweetEdge `json:"retweets" bson:"retweets"`
	Likes     []LikeEdge    `json:"likes" bson:"likes"`
}

// HasRetweet reports whether userID already appears in the retweets array.
func (o *Original) HasRetweet(userID string) bool {
	for _, e := range o.Retweets {
		if e.ID == userID {
			return true
		}
	}
	return false
}

// HasLike reports whether userID already appears in the likes array.
func (o *Original) HasLike(userID string) bool {
	for _, e := range o.Likes {
		if e.ID == userID {
			return true
		}
	}
	return false
}

// Repost is a reference record pointing at an Original.
type Repost struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	ReferencedAt time.Time `json:"referenced_at" bson:"referenced_at"`
	TweetID      string    `json:"tweet_id" bson:"tweet_id"`
}

// Post is the tagged union of the two variants. Exactly one of Original and
// Repost is non-nil, matching Kind.
type Post struct {
	Kind     PostKind
	Original *Original
	Repost   *Repost
}

// MarshalJSON renders the active variant only, so API responses carry either
// an original's fields or a repost's fields, never both.
func (p Post) MarshalJSON() ([]byte, error) {
	if p.Kind == KindRepost {
		return json.Marshal(p.Repost)
	}
	return json.Marshal(p.Original)
}

var hashtagPattern = regexp.MustCompile(`#[a-zA-Z]+`)

// ExtractHashtags returns all maximal #-prefixed letter runs in text, without
// the leading '#'. The result is never nil so it stores and serializes as [].
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return tags
}
