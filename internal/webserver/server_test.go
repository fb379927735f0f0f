package webserver

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/config"
	"github.com/rapidautoparts/storefront/internal/app"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) *app.Application {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(cfg.System.Workdir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	a := app.NewApplication(cfg)
	a.OverrideDB(db)
	require.NoError(t, a.MigrateDB(false))
	a.Setup()
	Init(a)

	ApiGET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"pong": "ok"})
	})
	ApiPOST("/echo", func(c echo.Context) error {
		var body map[string]interface{}
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, body)
	})
	ApiPOST("/session", func(c echo.Context) error {
		if err := SaveSession(c, "admin", time.Hour); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	AdminGET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"operator": CurrentOperator(c)})
	})
	return a
}

func serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Root().ServeHTTP(rec, req)
	return rec
}

func TestPublicRouteAndErrors(t *testing.T) {
	setupServer(t)

	rec := serve(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":"ok"}`, rec.Body.String())

	rec = serve(httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"a":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = serve(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_REQUEST"`)
}

func TestAdminRouteRequiresAuth(t *testing.T) {
	a := setupServer(t)

	rec := serve(httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(req).Code)

	token, expires, err := IssueToken(a.Config().Admin.JwtSecret, &domain.AdminOperator{Username: "admin", Level: "super"}, time.Hour)
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))
	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"operator":"admin"}`, rec.Body.String())

	expired, _, err := IssueToken(a.Config().Admin.JwtSecret, &domain.AdminOperator{Username: "admin"}, -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
}

func TestAdminRouteAcceptsSession(t *testing.T) {
	setupServer(t)

	rec := serve(httptest.NewRequest(http.MethodPost, "/api/session", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"operator":"admin"}`, rec.Body.String())
}
