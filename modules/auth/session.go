package auth

import (
	"errors"
	"time"

	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/api/env"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookie = "bookpoll_session"

const sessionLifetime = 7 * 24 * time.Hour

// generated fallback so an unconfigured process still runs; sessions
// then only survive until restart
var generatedSecret = uuid.New().String()

func sessionSecret() []byte {
	return []byte(env.GetOr("session.secret", generatedSecret))
}

func issueToken(login string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   login,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sessionSecret())
}

func parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return sessionSecret(), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

// CurrentUser resolves the session cookie to a stored user. A nil
// result means the request is anonymous; that is not an error for
// read paths.
func CurrentUser(c *gin.Context) *User {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return nil
	}

	login, err := parseToken(raw)
	if err != nil {
		return nil
	}

	db, err := database.Get()
	if err != nil {
		return nil
	}

	user := &User{}
	if err = db.Where(&User{Login: login}).First(user).Error; err != nil {
		return nil
	}
	return user
}

func setSession(c *gin.Context, login string) error {
	token, err := issueToken(login)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookie, token, int(sessionLifetime.Seconds()), "/", "", false, true)
	return nil
}

func clearSession(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
