package adminapi

import (
	"mime/multipart"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/rapidautoparts/storefront/pkg/metrics"
	"go.uber.org/zap"
)

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readPayload reads a JSON object or a multipart form into a generic map.
// The multipart form is returned so callers can pick up attached files.
func readPayload(c echo.Context) (map[string]interface{}, *multipart.Form, error) {
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		values := make(map[string]interface{}, len(form.Value))
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		return values, form, nil
	}
	values := map[string]interface{}{}
	if c.Request().ContentLength == 0 {
		return values, nil, nil
	}
	if err := c.Echo().JSONSerializer.Deserialize(c, &values); err != nil {
		return nil, nil, err
	}
	return values, nil, nil
}

// decodeWeak copies values into out, coercing numeric strings to integers
func decodeWeak(values map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// dropBlank removes keys whose value is an empty string
func dropBlank(values map[string]interface{}, keys ...string) {
	for _, k := range keys {
		if s, ok := values[k].(string); ok && strings.TrimSpace(s) == "" {
			delete(values, k)
		}
	}
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// storeUpload saves an optional attachment; a nil header saves nothing
func storeUpload(store *upload.Store, fh *multipart.FileHeader) (*upload.File, error) {
	if fh == nil {
		return nil, nil
	}
	f, err := store.Save(fh)
	if err != nil {
		return nil, err
	}
	metrics.Incr(metrics.UploadAccepted)
	return f, nil
}

// discardUpload removes files saved for a request that failed afterwards
func discardUpload(store *upload.Store, files ...*upload.File) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := store.Remove(f.URL); err != nil {
			zap.L().Warn("failed to remove upload", zap.String("url", f.URL), zap.Error(err))
		}
	}
}
