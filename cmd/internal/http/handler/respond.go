package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"newsnotes/cmd/internal/utils/apierror"
)

// respondError writes the service error. Redirects are followed instead of
// being serialized.
func respondError(c echo.Context, apierr apierror.ErrorResponse) error {
	if redirect, ok := apierr.(*apierror.RedirectError); ok {
		return c.Redirect(redirect.Code(), redirect.Location)
	}
	return c.JSON(apierr.Code(), apierr)
}

// malformedBody answers a body that could not be bound. The access check still
// comes first, so anonymous clients are sent to login whatever they posted.
func malformedBody(c echo.Context, denied apierror.ErrorResponse) error {
	if denied != nil {
		return respondError(c, denied)
	}
	return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
}

func parseID(c echo.Context, name string) (int64, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.InvalidIDError
	}
	return id, nil
}

// safeNext only accepts local absolute paths, anything else falls back to "/".
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
