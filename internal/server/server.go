// Package server is the HTTP surface: routing, request decoding, and the
// mapping from engine outcomes to the API's status-code contract.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/socialdoc/flock/internal/config"
	"github.com/socialdoc/flock/internal/domain"
	"github.com/socialdoc/flock/internal/errors"
	"github.com/socialdoc/flock/internal/sentiment"
)

// RelationshipService is the user/follow surface the handlers call.
type RelationshipService interface {
	CreateUser(ctx context.Context, username string) (*domain.User, bool, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	Follow(ctx context.Context, followerID, followedID string) (*domain.User, error)
	Unfollow(ctx context.Context, followerID, followedID string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}

// ContentService is the posts surface the handlers call.
type ContentService interface {
	Get(ctx context.Context, id string) (*domain.Post, error)
	Publish(ctx context.Context, authorID, text string) (*domain.Original, bool, error)
	Retweet(ctx context.Context, userID, tweetID string) (*domain.Repost, bool, error)
	Like(ctx context.Context, userID, tweetID string) (*domain.Original, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Delete(ctx context.Context, id string) (*domain.Post, error)
}

// QuantifierService aggregates stored sentiment into prevalence estimates.
type QuantifierService interface {
	QuantifyUser(ctx context.Context, userID string, from, to time.Time) (sentiment.Prevalence, error)
	QuantifyHashtag(ctx context.Context, hashtag string, from, to time.Time) (sentiment.Prevalence, error)
}

// Pinger is the store health probe used by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo          *echo.Echo
	config        *config.Config
	relationships RelationshipService
	contents      ContentService
	classifier    sentiment.Classifier
	quantifier    QuantifierService
	store         Pinger
	startTime     time.Time
}

func NewServer(
	cfg *config.Config,
	relationships RelationshipService,
	contents ContentService,
	classifier sentiment.Classifier,
	quantifier QuantifierService,
	store Pinger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(requestLogMiddleware())
	e.Use(newRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	e.Use(errors.Middleware())

	srv := &Server{
		echo:          e,
		config:        cfg,
		relationships: relationships,
		contents:      contents,
		classifier:    classifier,
		quantifier:    quantifier,
		store:         store,
		startTime:     time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
