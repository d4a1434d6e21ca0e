package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/socialdoc/flock/internal/domain"
	apperrors "github.com/socialdoc/flock/internal/errors"
)

const dateLayout = "2006-01-02"

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Text       string       `json:"text"`
	Sentiment  domain.Label `json:"sentiment"`
	Confidence float64      `json:"confidence"`
}

func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	prediction, err := s.classifier.Predict(c.Request().Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyText) {
			// the contract echoes the offending text back
			return c.JSON(http.StatusInternalServerError, map[string]string{"text": req.Text})
		}
		return apperrors.InternalError("failed to classify text", err)
	}

	return c.JSON(http.StatusOK, classifyResponse{
		Text:       req.Text,
		Sentiment:  prediction.Label,
		Confidence: prediction.Confidence,
	})
}

func (s *Server) handleQuantifyUser(c echo.Context) error {
	userID := c.Param("user_id")

	from, to, err := parseDateWindow(c)
	if err != nil {
		return err
	}

	prevalence, err := s.quantifier.QuantifyUser(c.Request().Context(), userID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID)
		}
		return apperrors.InternalError("failed to quantify user sentiment", err).WithField("user_id", userID)
	}
	return c.JSON(http.StatusOK, prevalence)
}

func (s *Server) handleQuantifyHashtag(c echo.Context) error {
	hashtag := c.Param("hashtag")

	from, to, err := parseDateWindow(c)
	if err != nil {
		return err
	}

	prevalence, err := s.quantifier.QuantifyHashtag(c.Request().Context(), hashtag, from, to)
	if err != nil {
		return apperrors.InternalError("failed to quantify hashtag sentiment", err).WithField("hashtag", hashtag)
	}
	return c.JSON(http.StatusOK, prevalence)
}

// parseDateWindow reads the optional date_from/date_to query parameters.
// date_to names a calendar day to include, so the exclusive upper bound is
// the following midnight.
func parseDateWindow(c echo.Context) (time.Time, time.Time, error) {
	var from, to time.Time

	if raw := c.QueryParam("date_from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, apperrors.ValidationError("invalid date_from").WithField("date_from", raw)
		}
		from = parsed
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, apperrors.ValidationError("invalid date_to").WithField("date_to", raw)
		}
		to = parsed.Add(24 * time.Hour)
	}
	return from, to, nil
}
