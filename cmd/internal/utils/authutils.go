package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"
	// AccessCookie keeps the provider access token needed to revoke a session.
	AccessCookie = "session_access"
)

var ErrTokenMissing = errors.New("no session token provided")

type TokenData struct {
	Sub      string
	Username string
	Exp      int64
}

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenData, error)
}

// HMACTokens issues and validates the HS256 session tokens of local accounts.
type HMACTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewHMACTokens(secret string, ttl time.Duration) (*HMACTokens, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes long")
	}
	return &HMACTokens{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a new session token for the given subject.
func (h *HMACTokens) Issue(sub, username string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(h.ttl)

	claims := jwt.MapClaims{
		"sub":      sub,
		"username": username,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}

func (h *HMACTokens) Verify(tokenString string) (*TokenData, error) {
	token, err := jwt.Parse(sanitizeToken(tokenString), func(token *jwt.Token) (interface{}, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return toTokenData(token)
}

// JWKSVerifier validates Cognito ID tokens against the public keys of the user pool.
type JWKSVerifier struct {
	jwks     keyfunc.Keyfunc
	issuer   string
	clientID string
}

func NewJWKSVerifier(region, poolID, clientID string) (*JWKSVerifier, error) {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
	// URL where Cognito publishes its public keys
	jwksURL := issuer + "/.well-known/jwks.json"

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS from resource at %s: %w", jwksURL, err)
	}

	log.Infof("JWKS initialized. Keys loaded from %s", jwksURL)
	return &JWKSVerifier{jwks: jwks, issuer: issuer, clientID: clientID}, nil
}

// Verify parses AND validates the signature locally.
// It returns the data if the token is authentic and unexpired.
func (j *JWKSVerifier) Verify(tokenString string) (*TokenData, error) {
	token, err := jwt.Parse(sanitizeToken(tokenString), j.jwks.Keyfunc,
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return toTokenData(token)
}

// ExtractToken reads the session cookie, falling back to the Authorization header.
func ExtractToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := sanitizeToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if header == "" {
		return "", ErrTokenMissing
	}
	return header, nil
}

func NewSessionCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return newCookie(SessionCookie, token, expires, secure)
}

func NewAccessCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return newCookie(AccessCookie, token, expires, secure)
}

// ExpiredCookie tells the browser to drop the named cookie.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	cookie := newCookie(name, "", time.Unix(0, 0), secure)
	cookie.MaxAge = -1
	return cookie
}

func newCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func toTokenData(token *jwt.Token) (*TokenData, error) {
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}

	data := &TokenData{
		Sub:      getValue(claims, "sub"),
		Username: getValue(claims, "username"),
		Exp:      getInt64(claims, "exp"),
	}

	if data.Sub == "" {
		return nil, errors.New("token has no subject")
	}

	// Cognito ID tokens carry the username under its own claim
	if data.Username == "" {
		data.Username = getValue(claims, "cognito:username")
	}
	return data, nil
}

func sanitizeToken(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

func getValue(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64(claims jwt.MapClaims, key string) int64 {
	val, ok := claims[key]
	if !ok {
		return 0
	}
	if f, ok := val.(float64); ok {
		return int64(f)
	}
	if i, ok := val.(int64); ok {
		return i
	}
	return 0
}
