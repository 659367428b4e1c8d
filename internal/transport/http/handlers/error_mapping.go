package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/infra/api"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
// An empty Message echoes the error text.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// commonCases covers the sentinels every agent endpoint can surface.
var commonCases = []ErrorCase{
	{Err: api.ErrTransport, Status: http.StatusBadGateway, Message: "social backend unreachable"},
	{Err: context.DeadlineExceeded, Status: http.StatusGatewayTimeout, Message: "social backend timed out"},
	{Err: context.Canceled, Status: http.StatusServiceUnavailable, Message: "request cancelled"},
	{Err: usecase.ErrNotAuthenticated, Status: http.StatusUnauthorized, Message: "sign in required"},
	{Err: usecase.ErrInvalidID, Status: http.StatusBadRequest},
	{Err: usecase.ErrEmptyComment, Status: http.StatusBadRequest},
	{Err: usecase.ErrEmptyPost, Status: http.StatusBadRequest},
	{Err: usecase.ErrPostTooLong, Status: http.StatusBadRequest},
	{Err: usecase.ErrUnsupportedImage, Status: http.StatusUnsupportedMediaType},
	{Err: usecase.ErrSelfFollow, Status: http.StatusBadRequest},
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest},
	{Err: usecase.ErrInvalidRegistration, Status: http.StatusBadRequest},
	{Err: usecase.ErrSuperseded, Status: http.StatusConflict},
	{Err: usecase.ErrPostNotLoaded, Status: http.StatusNotFound},
}

// RespondWithMappedError resolves err against cases, then against backend
// responses, falling back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			msg := cs.Message
			if msg == "" {
				msg = cs.Err.Error()
			}
			c.JSON(cs.Status, NewErrorResponse(c, msg))
			return
		}
	}

	var backendErr *api.Error
	if errors.As(err, &backendErr) {
		if backendErr.Status >= 400 && backendErr.Status < 500 {
			c.JSON(backendErr.Status, NewErrorResponse(c, backendErr.Message))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, NewErrorResponse(c, "social backend error: HTTP "+strconv.Itoa(backendErr.Status)))
		return
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondError maps err through the common cases.
func respondError(c *gin.Context, err error, fallbackMessage string) {
	RespondWithMappedError(c, err, commonCases, http.StatusInternalServerError, fallbackMessage)
}

// idParam reads a positive path id, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name))
		return 0, false
	}
	return id, true
}

func boolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
