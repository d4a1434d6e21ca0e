package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialdoc/flock/internal/domain"
	apperrors "github.com/socialdoc/flock/internal/errors"
)

type publishRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGetTweet(c echo.Context) error {
	tweetID := c.Param("tweet_id")

	post, err := s.contents.Get(c.Request().Context(), tweetID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return apperrors.NotFoundError("tweet not found").WithField("tweet_id", tweetID)
		}
		return apperrors.InternalError("failed to load tweet", err).WithField("tweet_id", tweetID)
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handleListUserTweets(c echo.Context) error {
	userID := c.Param("user_id")

	posts, err := s.contents.ListByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// an unknown author yields an empty list, flagged not-found
			return c.JSON(http.StatusNotFound, []domain.Post{})
		}
		return apperrors.InternalError("failed to list tweets", err).WithField("user_id", userID)
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) handlePublish(c echo.Context) error {
	userID := c.Param("user_id")

	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	post, created, err := s.contents.Publish(c.Request().Context(), userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyText):
			return apperrors.InvalidError("tweet text must not be empty").WithField("user_id", userID)
		case errors.Is(err, domain.ErrUserNotFound):
			return apperrors.NotFoundError("user not found").WithField("user_id", userID)
		default:
			return apperrors.InternalError("failed to publish tweet", err).WithField("user_id", userID)
		}
	}
	if !created {
		return c.JSON(http.StatusConflict, post)
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleRetweet(c echo.Context) error {
	userID := c.Param("user_id")
	tweetID := c.Param("tweet_id")

	repost, created, err := s.contents.Retweet(c.Request().Context(), userID, tweetID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPostNotFound):
			return apperrors.NotFoundError("user or tweet not found").
				WithField("user_id", userID).
				WithField("tweet_id", tweetID)
		case errors.Is(err, domain.ErrSelfRetweet):
			return apperrors.InvalidError("a user cannot retweet their own tweet").
				WithField("user_id", userID).
				WithField("tweet_id", tweetID)
		case errors.Is(err, domain.ErrRepostTarget):
			return apperrors.InvalidError("a retweet cannot reference another retweet").
				WithField("tweet_id", tweetID)
		default:
			return apperrors.InternalError("failed to retweet", err).
				WithField("user_id", userID).
				WithField("tweet_id", tweetID)
		}
	}
	if !created {
		return c.JSON(http.StatusConflict, repost)
	}
	return c.JSON(http.StatusCreated, repost)
}

func (s *Server) handleLike(c echo.Context) error {
	userID := c.Param("user_id")
	tweetID := c.Param("tweet_id")

	post, err := s.contents.Like(c.Request().Context(), userID, tweetID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPostNotFound):
			return apperrors.NotFoundError("user or tweet not found").
				WithField("user_id", userID).
				WithField("tweet_id", tweetID)
		case errors.Is(err, domain.ErrRepostTarget):
			return apperrors.InvalidError("a retweet cannot be liked").
				WithField("tweet_id", tweetID)
		default:
			return apperrors.InternalError("failed to like tweet", err).
				WithField("user_id", userID).
				WithField("tweet_id", tweetID)
		}
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleDeleteTweet(c echo.Context) error {
	tweetID := c.Param("tweet_id")

	post, err := s.contents.Delete(c.Request().Context(), tweetID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return apperrors.NotFoundError("tweet not found").WithField("tweet_id", tweetID)
		}
		return apperrors.InternalError("failed to delete tweet", err).WithField("tweet_id", tweetID)
	}
	return c.JSON(http.StatusOK, post)
}
