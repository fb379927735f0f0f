package adminapi

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"go.uber.org/zap"
)

type reviewPayload struct {
	Name     string  `json:"name"`
	Rating   int     `json:"rating"`
	Review   string  `json:"review"`
	ImageURL *string `json:"imageUrl"`
	VideoURL *string `json:"videoUrl"`
}

func registerReviewRoutes() {
	webserver.ApiGET("/products/:id/reviews", listReviews)
	webserver.ApiGET("/products/:id/reviews/summary", reviewSummary)
	webserver.ApiPOST("/products/:id/reviews", createReview)
}

func listReviews(c echo.Context) error {
	rows, err := GetAppContext(c).Reviews().ListByProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failError(c, err)
	}
	return ok(c, rows)
}

func reviewSummary(c echo.Context) error {
	summary, err := GetAppContext(c).Reviews().Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failError(c, err)
	}
	return ok(c, summary)
}

func createReview(c echo.Context) error {
	appCtx := GetAppContext(c)
	ctx := c.Request().Context()

	values, form, err := readPayload(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", err.Error())
	}
	imageFile, videoFile := formFile(form, "image"), formFile(form, "video")
	for _, fh := range []*multipart.FileHeader{imageFile, videoFile} {
		if fh != nil {
			if err := appCtx.Uploads().Check(fh); err != nil {
				return failError(c, err)
			}
		}
	}

	product, err := appCtx.Products().Get(ctx, c.Param("id"))
	if err != nil {
		return failError(c, err)
	}
	var payload reviewPayload
	if err := decodeWeak(values, &payload); err != nil {
		return fail(c, http.StatusBadRequest, domain.CodeValidation, "rating must be an integer", err.Error())
	}
	review := &domain.Review{
		ProductID: product.ID,
		Name:      payload.Name,
		Rating:    payload.Rating,
		Review:    payload.Review,
		ImageURL:  payload.ImageURL,
		VideoURL:  payload.VideoURL,
	}
	if err := review.Validate(); err != nil {
		return failError(c, err)
	}

	var saved []*upload.File
	image, err := storeUpload(appCtx.Uploads(), imageFile)
	if err != nil {
		return failError(c, err)
	}
	saved = append(saved, image)
	if image != nil {
		review.ImageURL = &image.URL
	}
	video, err := storeUpload(appCtx.Uploads(), videoFile)
	if err != nil {
		discardUpload(appCtx.Uploads(), saved...)
		return failError(c, err)
	}
	saved = append(saved, video)
	if video != nil {
		review.VideoURL = &video.URL
	}

	if err := appCtx.Reviews().Create(ctx, review); err != nil {
		discardUpload(appCtx.Uploads(), saved...)
		return failError(c, err)
	}
	zap.L().Info("review created", zap.String("product", product.PartID), zap.Int("rating", review.Rating))
	publish(c, events.TopicReviewCreated, product.PartID, "", review)
	return created(c, review)
}
