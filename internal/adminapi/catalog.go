package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/matching"
	"github.com/rapidautoparts/storefront/internal/webserver"
)

type quoteResponse struct {
	matching.SearchStatus
	Mode  matching.Mode `json:"mode"`
	Steps []string      `json:"steps"`
}

func registerCatalogRoutes() {
	webserver.ApiGET("/inventory", listInventory)
	webserver.ApiPOST("/quotes", findQuote)
	webserver.ApiGET("/category-images", listCategoryImages)
	webserver.AdminPOST("/category-images", uploadCategoryImage)
}

func listInventory(c echo.Context) error {
	filter := matching.InventoryFilter{Text: c.QueryParam("q"), Type: c.QueryParam("type")}
	products, err := GetAppContext(c).Products().List(c.Request().Context())
	if err != nil {
		return failError(c, err)
	}
	return ok(c, matching.FilterInventory(products, filter))
}

func findQuote(c echo.Context) error {
	appCtx := GetAppContext(c)
	values, _, err := readPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quote request", err.Error())
	}
	var q matching.QuoteQuery
	if err := decodeWeak(values, &q); err != nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "year must be an integer", err.Error())
	}
	if !q.Complete() {
		return failError(c, matching.ErrIncompleteQuery)
	}

	products, err := appCtx.Products().List(c.Request().Context())
	if err != nil {
		return failError(c, err)
	}
	search := matching.NewQuoteSearch(appCtx.Matcher())
	if err := search.Start(products, q); err != nil {
		return failError(c, err)
	}
	status, err := search.Run(c.Request().Context(), appCtx.Config().Matching.StepDelay)
	if err != nil {
		return failError(c, err)
	}
	return ok(c, quoteResponse{SearchStatus: status, Mode: appCtx.Matcher().Mode(), Steps: matching.SearchSteps})
}

func listCategoryImages(c echo.Context) error {
	rows, err := GetAppContext(c).CategoryImages().List(c.Request().Context())
	if err != nil {
		return failError(c, err)
	}
	return ok(c, rows)
}

func uploadCategoryImage(c echo.Context) error {
	appCtx := GetAppContext(c)
	if !isMultipart(c) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No image file provided", nil)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse upload", err.Error())
	}
	fh := formFile(form, "image")
	if fh == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No image file provided", nil)
	}
	img, err := appCtx.CategoryImages().Publish(c.Request().Context(), c.FormValue("category"), fh)
	if err != nil {
		return failError(c, err)
	}
	publish(c, events.TopicCategoryUpdated, img.Category,
		fmt.Sprintf("category %s image version %d", img.Category, img.Version), img)
	return ok(c, map[string]interface{}{
		"message":  "Image uploaded successfully",
		"category": img.Category,
		"path":     img.Path,
		"version":  img.Version,
	})
}
