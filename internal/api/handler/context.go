package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/duveen2546R/FinManager/internal/api/middleware"
	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// authorizeUser rejects requests whose token names a different user than the
// one being acted on. Requests without a token pass; the middleware decides
// whether a token is mandatory.
func authorizeUser(c echo.Context, userID string) error {
	claimed, _ := c.Get(middleware.ContextUserID).(string)
	if claimed != "" && claimed != userID {
		return domain.ErrForbidden
	}
	return nil
}
