package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Users and the follow graph
	s.echo.GET("/users/:user_id", s.handleGetUser)
	s.echo.POST("/users", s.handleCreateUser)
	s.echo.DELETE("/users/:user_id", s.handleDeleteUser)
	s.echo.PUT("/users/:user_id/follow/:other_id", s.handleFollow)
	s.echo.PUT("/users/:user_id/unfollow/:other_id", s.handleUnfollow)

	// Posts. The literal "user" segment must register before the :tweet_id
	// wildcard takes it.
	s.echo.GET("/tweets/user/:user_id", s.handleListUserTweets)
	s.echo.GET("/tweets/:tweet_id", s.handleGetTweet)
	s.echo.POST("/tweets/:user_id/tweet", s.handlePublish)
	s.echo.POST("/tweets/:user_id/retweet/:tweet_id", s.handleRetweet)
	s.echo.POST("/tweets/:user_id/like/:tweet_id", s.handleLike)
	s.echo.DELETE("/tweets/:tweet_id", s.handleDeleteTweet)

	// Sentiment
	s.echo.POST("/sentiment/classify", s.handleClassify)
	s.echo.POST("/sentiment/quantify/user/:user_id", s.handleQuantifyUser)
	s.echo.POST("/sentiment/quantify/hashtag/:hashtag", s.handleQuantifyHashtag)
}
