package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/app"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/repository"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"github.com/rapidautoparts/storefront/pkg/metrics"
)

const maxPatchFileSize = 4 * 1024 * 1024

func registerSystemRoutes() {
	webserver.AdminPOST("/admin/products/images", patchProductImages)
	webserver.AdminGET("/admin/products/export", exportProducts)
	webserver.AdminGET("/admin/logs", listAdminLogs)
	webserver.AdminGET("/admin/metrics", queryMetrics)
}

func patchProductImages(c echo.Context) error {
	var r io.Reader
	if isMultipart(c) {
		fh, err := c.FormFile("file")
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No CSV file provided", nil)
		}
		if fh.Size > maxPatchFileSize {
			return fail(c, http.StatusBadRequest, "UPLOAD_REJECTED", "CSV file is too large", nil)
		}
		f, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read CSV file", err.Error())
		}
		defer f.Close()
		r = f
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPatchFileSize))
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read CSV body", err.Error())
		}
		r = bytes.NewReader(body)
	}

	result, err := GetAppContext(c).PatchImages(c.Request().Context(), webserver.CurrentOperator(c), r)
	if err != nil {
		return failError(c, err)
	}
	return ok(c, result)
}

func exportProducts(c echo.Context) error {
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = app.FormatCSV
	}
	var contentType string
	switch format {
	case app.FormatCSV:
		contentType = "text/csv"
	case app.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "format must be csv or xlsx", nil)
	}

	var buf bytes.Buffer
	if err := GetAppContext(c).ExportCatalog(c.Request().Context(), format, &buf); err != nil {
		return failError(c, err)
	}
	filename := fmt.Sprintf("products-%s.%s", time.Now().Format("20060102"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func listAdminLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	filter := repository.AdminLogFilter{
		Operator: strings.TrimSpace(c.QueryParam("operator")),
		Action:   strings.TrimSpace(c.QueryParam("action")),
	}
	if since := strings.TrimSpace(c.QueryParam("since")); since != "" {
		t, err := dateparse.ParseLocal(since)
		if err != nil {
			return fail(c, http.StatusBadRequest, domain.CodeValidation, "Invalid since time", err.Error())
		}
		filter.Since = t
	}
	rows, total, err := GetAppContext(c).AdminLogs().List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return failError(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func queryMetrics(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "name is required", nil)
	}
	end := time.Now()
	start := end.Add(-24 * time.Hour)
	if since := strings.TrimSpace(c.QueryParam("since")); since != "" {
		t, err := dateparse.ParseLocal(since)
		if err != nil {
			return fail(c, http.StatusBadRequest, domain.CodeValidation, "Invalid since time", err.Error())
		}
		start = t
	}
	points, err := metrics.Query(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metrics", err.Error())
	}
	return ok(c, map[string]interface{}{
		"name":    name,
		"counter": metrics.Counter(name),
		"points":  points,
	})
}
