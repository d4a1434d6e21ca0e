package content

import (
	"time"

	"github.com/socialdoc/flock/internal/domain"
)

// originalDoc and repostDoc are the write shapes: the domain variant plus the
// kind discriminant, flattened into one document.
type originalDoc struct {
	domain.Original `bson:",inline"`
	Kind            domain.PostKind `json:"kind" bson:"kind"`
}

type repostDoc struct {
	domain.Repost `bson:",inline"`
	Kind          domain.PostKind `json:"kind" bson:"kind"`
}

// postDoc is the read shape covering both variants; only the fields of the
// stored kind are populated.
type postDoc struct {
	ID   string          `json:"id" bson:"_id"`
	Kind domain.PostKind `json:"kind" bson:"kind"`

	AuthorID  string               `json:"author_id" bson:"author_id"`
	TweetedAt time.Time            `json:"tweeted_at" bson:"tweeted_at"`
	Text      string               `json:"text" bson:"text"`
	Sentiment domain.Sentiment     `json:"sentiment" bson:"sentiment"`
	Hashtags  []string             `json:"hashtags" bson:"hashtags"`
	Retweets  []domain.RetweetEdge `json:"retweets" bson:"retweets"`
	Likes     []domain.LikeEdge    `json:"likes" bson:"likes"`

	UserID       string    `json:"user_id" bson:"user_id"`
	ReferencedAt time.Time `json:"referenced_at" bson:"referenced_at"`
	TweetID      string    `json:"tweet_id" bson:"tweet_id"`
}

func (d postDoc) toPost() *domain.Post {
	if d.Kind == domain.KindRepost {
		return &domain.Post{
			Kind: domain.KindRepost,
			Repost: &domain.Repost{
				ID:           d.ID,
				UserID:       d.UserID,
				ReferencedAt: d.ReferencedAt,
				TweetID:      d.TweetID,
			},
		}
	}

	o := &domain.Original{
		ID:        d.ID,
		AuthorID:  d.AuthorID,
		TweetedAt: d.TweetedAt,
		Text:      d.Text,
		Sentiment: d.Sentiment,
		Hashtags:  d.Hashtags,
		Retweets:  d.Retweets,
		Likes:     d.Likes,
	}
	if o.Hashtags == nil {
		o.Hashtags = []string{}
	}
	if o.Retweets == nil {
		o.Retweets = []domain.RetweetEdge{}
	}
	if o.Likes == nil {
		o.Likes = []domain.LikeEdge{}
	}
	return &domain.Post{Kind: domain.KindOriginal, Original: o}
}
