package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/utils"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
}

type IdentityMiddlewareConfig struct {
	UserRepo UserRepository
	Verifier utils.TokenVerifier
}

// NewIdentityMiddleware resolves the user behind the session token. It never
// rejects a request: a missing, invalid or expired token, or a token of an
// unknown or inactive user, leaves the request anonymous.
func NewIdentityMiddleware(cfg *IdentityMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.ExtractToken(c)
			if err != nil {
				if !errors.Is(err, utils.ErrTokenMissing) {
					log.Debugf("failed to read session token: %v", err)
				}
				return next(c)
			}

			tokenData, err := cfg.Verifier.Verify(token)
			if err != nil {
				log.Debugf("rejected session token: %v", err)
				return next(c)
			}

			user, err := cfg.UserRepo.FindActiveBySub(tokenData.Sub)
			if err != nil {
				log.Errorf("failed to resolve user (%s): %v", tokenData.Sub, err)
				return next(c)
			}

			if user == nil {
				// User deleted or deactivated but still has a valid token
				return next(c)
			}

			utils.SetUser(c, user)
			utils.SetTokenData(c, tokenData)
			return next(c)
		}
	}
}
