package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialdoc/flock/internal/domain"
	apperrors "github.com/socialdoc/flock/internal/errors"
)

type createUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleGetUser(c echo.Context) error {
	userID := c.Param("user_id")

	user, err := s.relationships.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID)
		}
		return apperrors.InternalError("failed to load user", err).WithField("user_id", userID)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	user, created, err := s.relationships.CreateUser(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUsername) {
			return apperrors.ValidationError("invalid username").WithField("username", req.Username)
		}
		return apperrors.InternalError("failed to create user", err).WithField("username", req.Username)
	}
	if !created {
		// the taken username's document tells the caller who holds it
		return c.JSON(http.StatusConflict, user)
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	userID := c.Param("user_id")

	user, err := s.relationships.DeleteUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID)
		}
		return apperrors.InternalError("failed to delete user", err).WithField("user_id", userID)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleFollow(c echo.Context) error {
	userID := c.Param("user_id")
	otherID := c.Param("other_id")

	user, err := s.relationships.Follow(c.Request().Context(), userID, otherID)
	if err != nil {
		return followError(err, userID, otherID)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleUnfollow(c echo.Context) error {
	userID := c.Param("user_id")
	otherID := c.Param("other_id")

	user, err := s.relationships.Unfollow(c.Request().Context(), userID, otherID)
	if err != nil {
		return followError(err, userID, otherID)
	}
	return c.JSON(http.StatusOK, user)
}

func followError(err error, userID, otherID string) error {
	switch {
	case errors.Is(err, domain.ErrSelfRelation):
		return apperrors.InvalidError("a user cannot follow themselves").WithField("user_id", userID)
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError("user not found").
			WithField("user_id", userID).
			WithField("other_id", otherID)
	default:
		return apperrors.InternalError("failed to update follow state", err).
			WithField("user_id", userID).
			WithField("other_id", otherID)
	}
}
