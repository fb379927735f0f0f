package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/domain"
)

const (
	SessionName        = "storefront_session"
	sessionOperatorKey = "operator"
	operatorContextKey = "operator"
	tokenContextKey    = "user"
	tokenIssuer        = "storefront"
)

// OperatorClaims are the JWT claims issued at login
type OperatorClaims struct {
	Username string `json:"username"`
	Level    string `json:"level"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the operator
func IssueToken(secret string, op *domain.AdminOperator, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := &OperatorClaims{
		Username: op.Username,
		Level:    op.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return token, expires, err
}

// jwtMiddleware requires a bearer token unless the session already holds an operator
func jwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(OperatorClaims)
		},
		Skipper: func(c echo.Context) bool {
			if name := sessionOperator(c); name != "" {
				c.Set(operatorContextKey, name)
				return true
			}
			return false
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required").SetInternal(err)
		},
	})
}

func sessionOperator(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	name, _ := sess.Values[sessionOperatorKey].(string)
	return name
}

// CurrentOperator returns the authenticated operator name of an admin request
func CurrentOperator(c echo.Context) string {
	if name, ok := c.Get(operatorContextKey).(string); ok && name != "" {
		return name
	}
	if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*OperatorClaims); ok {
			return claims.Username
		}
	}
	return sessionOperator(c)
}

// SaveSession stores the operator in the signed cookie session
func SaveSession(c echo.Context, username string, ttl time.Duration) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[sessionOperatorKey] = username
	return sess.Save(c.Request(), c.Response())
}

// ClearSession expires the operator session cookie
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	delete(sess.Values, sessionOperatorKey)
	return sess.Save(c.Request(), c.Response())
}
