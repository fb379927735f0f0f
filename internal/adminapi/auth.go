package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Operator  domain.AdminOperator `json:"operator"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/admin/login", login)
	webserver.AdminGET("/admin/session", currentSession)
	webserver.AdminPOST("/admin/logout", logout)
}

func login(c echo.Context) error {
	appCtx := GetAppContext(c)
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "Username and password are required", nil)
	}

	op, err := appCtx.VerifyOperator(c.Request().Context(), payload.Username, payload.Password)
	if errors.Is(err, domain.ErrNotFound) {
		zap.L().Warn("admin login failed", zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		appCtx.Events().Publish(events.Event{
			Topic:    events.TopicAdminLoginFailed,
			Operator: payload.Username,
			IP:       c.RealIP(),
			Message:  "invalid credentials",
		})
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	} else if err != nil {
		return failError(c, err)
	}

	cfg := appCtx.Config().Admin
	token, expires, err := webserver.IssueToken(cfg.JwtSecret, op, cfg.TokenTTL)
	if err != nil {
		zap.L().Error("sign admin token", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unable to issue token", nil)
	}
	if err := webserver.SaveSession(c, op.Username, cfg.TokenTTL); err != nil {
		zap.L().Warn("save admin session", zap.Error(err))
	}
	appCtx.Events().Publish(events.Event{
		Topic:    events.TopicAdminLogin,
		Operator: op.Username,
		IP:       c.RealIP(),
		Message:  "login",
	})
	return ok(c, loginResponse{Token: token, ExpiresAt: expires, Operator: *op})
}

func currentSession(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"authenticated": true,
		"username":      webserver.CurrentOperator(c),
	})
}

func logout(c echo.Context) error {
	if err := webserver.ClearSession(c); err != nil {
		zap.L().Warn("clear admin session", zap.Error(err))
	}
	return ok(c, map[string]string{"message": "Logged out"})
}
