package utils

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/policy"
)

const (
	userContextKey  = "user"
	tokenContextKey = "token"
)

func SetUser(c echo.Context, user *entity.User) {
	c.Set(userContextKey, user)
}

func SetTokenData(c echo.Context, data *TokenData) {
	c.Set(tokenContextKey, data)
}

// GetTokenData returns the verified claims of the request, nil for anonymous requests.
func GetTokenData(c echo.Context) *TokenData {
	data, _ := c.Get(tokenContextKey).(*TokenData)
	return data
}

// GetRequester builds the requester of the current request. Requests that went
// through no identity resolution at all are treated as anonymous.
func GetRequester(c echo.Context) policy.Requester {
	origin := c.Request().URL.RequestURI()

	val := c.Get(userContextKey)
	if val == nil {
		return policy.Anonymous(origin)
	}

	user, ok := val.(*entity.User)
	if !ok || user == nil {
		log.Warnf("expected user type at '%s' context key, got %T", userContextKey, val)
		return policy.Anonymous(origin)
	}
	return policy.AuthenticatedAs(user, origin)
}
