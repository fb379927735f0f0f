package adminapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/app"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/matching"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"github.com/rapidautoparts/storefront/pkg/metrics"
	"go.uber.org/zap"
)

// Init registers every API route on the default web server
func Init() {
	registerAuthRoutes()
	registerProductRoutes()
	registerReviewRoutes()
	registerCatalogRoutes()
	registerSystemRoutes()
}

// PageMeta describes one page of a listing
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
}

type pagedResponse struct {
	Data interface{} `json:"data"`
	Meta PageMeta    `json:"meta"`
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{
		Data: data,
		Meta: PageMeta{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Pages:    int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, webserver.ErrorResponse{Code: code, Message: message, Details: details})
}

// failError maps domain, upload and matching errors to a response
func failError(c echo.Context, err error) error {
	var derr *domain.Error
	var rejected *upload.RejectedError
	switch {
	case errors.As(err, &rejected):
		metrics.Incr(metrics.UploadRejected)
		return fail(c, http.StatusBadRequest, "UPLOAD_REJECTED", rejected.Error(), nil)
	case errors.Is(err, matching.ErrIncompleteQuery):
		return fail(c, http.StatusBadRequest, domain.CodeValidation, err.Error(), nil)
	case errors.As(err, &derr):
		switch derr.Code {
		case domain.CodeNotFound:
			return fail(c, http.StatusNotFound, derr.Code, derr.Message, nil)
		case domain.CodeValidation:
			return fail(c, http.StatusBadRequest, derr.Code, derr.Message, nil)
		case domain.CodeConflict:
			return fail(c, http.StatusConflict, derr.Code, derr.Message, nil)
		}
	}
	zap.L().Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	return fail(c, http.StatusInternalServerError, domain.CodeStorage, "Internal storage error", nil)
}

func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}

// publish emits a domain event attributed to the current operator
func publish(c echo.Context, topic, subject, message string, payload interface{}) {
	GetAppContext(c).Events().Publish(events.Event{
		Topic:    topic,
		Operator: webserver.CurrentOperator(c),
		IP:       c.RealIP(),
		Subject:  subject,
		Message:  message,
		Payload:  payload,
	})
}
