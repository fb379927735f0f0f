package adminapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"go.uber.org/zap"
)

type productPayload struct {
	PartID      string  `json:"partId"`
	Type        string  `json:"type"`
	Year        int     `json:"year"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Details     string  `json:"details"`
	Price       *int    `json:"price"`
	Status      string  `json:"status"`
	Customer    *string `json:"customer"`
	ImageURL    *string `json:"imageUrl"`
	Protection  *string `json:"protection"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (p productPayload) product() domain.Product {
	price := 0
	if p.Price != nil {
		price = *p.Price
	}
	return domain.Product{
		PartID:      p.PartID,
		Type:        p.Type,
		Year:        p.Year,
		Make:        p.Make,
		Model:       p.Model,
		Details:     p.Details,
		Price:       price,
		Status:      p.Status,
		Customer:    p.Customer,
		ImageURL:    p.ImageURL,
		Protection:  p.Protection,
		Location:    p.Location,
		Description: p.Description,
	}
}

type productPatchPayload struct {
	PartID      *string `json:"partId"`
	Type        *string `json:"type"`
	Year        *int    `json:"year"`
	Make        *string `json:"make"`
	Model       *string `json:"model"`
	Details     *string `json:"details"`
	Price       *int    `json:"price"`
	Status      *string `json:"status"`
	Customer    *string `json:"customer"`
	ImageURL    *string `json:"imageUrl"`
	Protection  *string `json:"protection"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (p productPatchPayload) patch() domain.ProductPatch {
	return domain.ProductPatch{
		PartID:      p.PartID,
		Type:        p.Type,
		Year:        p.Year,
		Make:        p.Make,
		Model:       p.Model,
		Details:     p.Details,
		Price:       p.Price,
		Status:      p.Status,
		Customer:    p.Customer,
		ImageURL:    p.ImageURL,
		Protection:  p.Protection,
		Location:    p.Location,
		Description: p.Description,
	}
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.AdminPOST("/products", createProduct)
	webserver.AdminPUT("/products/:id", updateProduct)
	webserver.AdminDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	rows, err := GetAppContext(c).Products().List(c.Request().Context())
	if err != nil {
		return failError(c, err)
	}
	return ok(c, rows)
}

func getProduct(c echo.Context) error {
	p, err := GetAppContext(c).Products().Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failError(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	appCtx := GetAppContext(c)
	values, form, err := readPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	dropBlank(values, "year", "price")
	var payload productPayload
	if err := decodeWeak(values, &payload); err != nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "year and price must be integers", err.Error())
	}
	if payload.Price == nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "price is required", nil)
	}
	p := payload.product()

	saved, err := storeUpload(appCtx.Uploads(), formFile(form, "image"))
	if err != nil {
		return failError(c, err)
	}
	if saved != nil {
		p.ImageURL = &saved.URL
	}

	if err := appCtx.Products().Create(c.Request().Context(), &p); err != nil {
		discardUpload(appCtx.Uploads(), saved)
		return failError(c, err)
	}
	zap.L().Info("product created", zap.String("id", p.ID), zap.String("partId", p.PartID))
	publish(c, events.TopicProductCreated, p.PartID, fmt.Sprintf("create product %s", p.PartID), &p)
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	appCtx := GetAppContext(c)
	values, form, err := readPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	dropBlank(values, "year", "price")
	var payload productPatchPayload
	if err := decodeWeak(values, &payload); err != nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "year and price must be integers", err.Error())
	}
	patch := payload.patch()

	saved, err := storeUpload(appCtx.Uploads(), formFile(form, "image"))
	if err != nil {
		return failError(c, err)
	}
	if saved != nil {
		patch.ImageURL = &saved.URL
	}

	p, err := appCtx.Products().Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		discardUpload(appCtx.Uploads(), saved)
		return failError(c, err)
	}
	changed := make([]string, 0, len(patch.Changes()))
	for k := range patch.Changes() {
		changed = append(changed, k)
	}
	sort.Strings(changed)
	publish(c, events.TopicProductUpdated, p.PartID,
		fmt.Sprintf("update product %s fields %s", p.PartID, strings.Join(changed, ",")), p)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	appCtx := GetAppContext(c)
	id := c.Param("id")
	deleted, err := appCtx.Products().Delete(c.Request().Context(), id)
	if err != nil {
		return failError(c, err)
	}
	if !deleted {
		return fail(c, http.StatusNotFound, domain.CodeNotFound, "Product not found", nil)
	}
	publish(c, events.TopicProductDeleted, id, fmt.Sprintf("delete product %s", id), nil)
	return ok(c, map[string]string{"message": "Product deleted successfully"})
}
