package server

import (
	"context"
	"time"

	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/sentiment"
)

type relationshipServiceMock struct {
	createUserFunc func(ctx context.Context, username string) (*domain.User, bool, error)
	getUserFunc    func(ctx context.Context, id string) (*domain.User, error)
	followFunc     func(ctx context.Context, followerID, followedID string) (*domain.User, error)
	unfollowFunc   func(ctx context.Context, followerID, followedID string) (*domain.User, error)
	deleteUserFunc func(ctx context.Context, id string) (*domain.User, error)
}

func (m *relationshipServiceMock) CreateUser(ctx context.Context, username string) (*domain.User, bool, error) {
	return m.createUserFunc(ctx, username)
}

func (m *relationshipServiceMock) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return m.getUserFunc(ctx, id)
}

func (m *relationshipServiceMock) Follow(ctx context.Context, followerID, followedID string) (*domain.User, error) {
	return m.followFunc(ctx, followerID, followedID)
}

func (m *relationshipServiceMock) Unfollow(ctx context.Context, followerID, followedID string) (*domain.User, error) {
	return m.unfollowFunc(ctx, followerID, followedID)
}

func (m *relationshipServiceMock) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	return m.deleteUserFunc(ctx, id)
}

type contentServiceMock struct {
	getFunc        func(ctx context.Context, id string) (*domain.Post, error)
	publishFunc    func(ctx context.Context, authorID, text string) (*domain.Original, bool, error)
	retweetFunc    func(ctx context.Context, userID, tweetID string) (*domain.Repost, bool, error)
	likeFunc       func(ctx context.Context, userID, tweetID string) (*domain.Original, error)
	listByUserFunc func(ctx context.Context, userID string) ([]domain.Post, error)
	deleteFunc     func(ctx context.Context, id string) (*domain.Post, error)
}

func (m *contentServiceMock) Get(ctx context.Context, id string) (*domain.Post, error) {
	return m.getFunc(ctx, id)
}

func (m *contentServiceMock) Publish(ctx context.Context, authorID, text string) (*domain.Original, bool, error) {
	return m.publishFunc(ctx, authorID, text)
}

func (m *contentServiceMock) Retweet(ctx context.Context, userID, tweetID string) (*domain.Repost, bool, error) {
	return m.retweetFunc(ctx, userID, tweetID)
}

func (m *contentServiceMock) Like(ctx context.Context, userID, tweetID string) (*domain.Original, error) {
	return m.likeFunc(ctx, userID, tweetID)
}

func (m *contentServiceMock) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *contentServiceMock) Delete(ctx context.Context, id string) (*domain.Post, error) {
	return m.deleteFunc(ctx, id)
}

type classifierMock struct {
	predictFunc func(ctx context.Context, text string) (domain.Sentiment, error)
}

func (m *classifierMock) Predict(ctx context.Context, text string) (domain.Sentiment, error) {
	return m.predictFunc(ctx, text)
}

type quantifierServiceMock struct {
	quantifyUserFunc    func(ctx context.Context, userID string, from, to time.Time) (sentiment.Prevalence, error)
	quantifyHashtagFunc func(ctx context.Context, hashtag string, from, to time.Time) (sentiment.Prevalence, error)
}

func (m *quantifierServiceMock) QuantifyUser(ctx context.Context, userID string, from, to time.Time) (sentiment.Prevalence, error) {
	return m.quantifyUserFunc(ctx, userID, from, to)
}

func (m *quantifierServiceMock) QuantifyHashtag(ctx context.Context, hashtag string, from, to time.Time) (sentiment.Prevalence, error) {
	return m.quantifyHashtagFunc(ctx, hashtag, from, to)
}

type pingerMock struct {
	pingFunc func(ctx context.Context) error
}

func (m *pingerMock) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}
