package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/pkg/common"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ImagePatchRow is one line of an image patch file
type ImagePatchRow struct {
	PartID   string `csv:"partId"`
	ImageURL string `csv:"imageUrl"`
}

type PatchFailure struct {
	PartID string `json:"partId"`
	Error  string `json:"error"`
}

// PatchResult summarizes a bulk image patch
type PatchResult struct {
	Updated int            `json:"updated"`
	Missing []string       `json:"missing"`
	Failed  []PatchFailure `json:"failed"`
}

// PatchImages sets product image URLs from partId,imageUrl CSV rows.
// Unknown part ids are reported, not fatal.
func (a *Application) PatchImages(ctx context.Context, operator string, r io.Reader) (*PatchResult, error) {
	var rows []*ImagePatchRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, domain.NewValidationError("invalid image patch file: %s", err.Error())
	}

	result := &PatchResult{Missing: []string{}, Failed: []PatchFailure{}}
	for _, row := range rows {
		partID := strings.TrimSpace(row.PartID)
		if partID == "" {
			continue
		}
		p, err := a.repos.Products.GetByPartID(ctx, partID)
		if errors.Is(err, domain.ErrNotFound) {
			result.Missing = append(result.Missing, partID)
			continue
		} else if err != nil {
			return result, err
		}
		url := strings.TrimSpace(row.ImageURL)
		if _, err := a.repos.Products.Update(ctx, p.ID, domain.ProductPatch{ImageURL: &url}); err != nil {
			result.Failed = append(result.Failed, PatchFailure{PartID: partID, Error: err.Error()})
			continue
		}
		result.Updated++
	}

	zap.L().Info("image patch applied",
		zap.Int("updated", result.Updated),
		zap.Int("missing", len(result.Missing)),
		zap.Int("failed", len(result.Failed)))
	if a.bus != nil {
		a.bus.Publish(events.Event{
			Topic:    events.TopicImagesPatched,
			Operator: operator,
			Message:  fmt.Sprintf("updated %d, missing %d, failed %d", result.Updated, len(result.Missing), len(result.Failed)),
		})
	}
	return result, nil
}

type exportRow struct {
	ID          string `csv:"id"`
	PartID      string `csv:"partId"`
	Type        string `csv:"type"`
	Year        int    `csv:"year"`
	Make        string `csv:"make"`
	Model       string `csv:"model"`
	Details     string `csv:"details"`
	Price       int    `csv:"price"`
	Status      string `csv:"status"`
	Customer    string `csv:"customer"`
	ImageURL    string `csv:"imageUrl"`
	Protection  string `csv:"protection"`
	Location    string `csv:"location"`
	Description string `csv:"description"`
	CreatedAt   string `csv:"createdAt"`
}

var exportHeader = []string{
	"id", "partId", "type", "year", "make", "model", "details", "price", "status",
	"customer", "imageUrl", "protection", "location", "description", "createdAt",
}

func toExportRow(p domain.Product) *exportRow {
	return &exportRow{
		ID:          p.ID,
		PartID:      p.PartID,
		Type:        p.Type,
		Year:        p.Year,
		Make:        p.Make,
		Model:       p.Model,
		Details:     p.Details,
		Price:       p.Price,
		Status:      p.Status,
		Customer:    common.StringValue(p.Customer),
		ImageURL:    common.StringValue(p.ImageURL),
		Protection:  common.StringValue(p.Protection),
		Location:    common.StringValue(p.Location),
		Description: common.StringValue(p.Description),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func (r *exportRow) values() []interface{} {
	return []interface{}{
		r.ID, r.PartID, r.Type, r.Year, r.Make, r.Model, r.Details, r.Price, r.Status,
		r.Customer, r.ImageURL, r.Protection, r.Location, r.Description, r.CreatedAt,
	}
}

// ExportCatalog writes every product as csv or xlsx
func (a *Application) ExportCatalog(ctx context.Context, format string, w io.Writer) error {
	products, err := a.repos.Products.List(ctx)
	if err != nil {
		return err
	}
	rows := make([]*exportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, toExportRow(p))
	}

	switch strings.ToLower(format) {
	case "", FormatCSV:
		return gocsv.Marshal(rows, w)
	case FormatXLSX:
		return writeXLSX(rows, w)
	default:
		return domain.NewValidationError("unsupported export format %q", format)
	}
}

func writeXLSX(rows []*exportRow, w io.Writer) error {
	const sheet = "Sheet1"
	f := excelize.NewFile()
	for col, name := range exportHeader {
		f.SetCellValue(sheet, cellName(col, 1), name)
	}
	for i, row := range rows {
		for col, v := range row.values() {
			f.SetCellValue(sheet, cellName(col, i+2), v)
		}
	}
	return f.Write(w)
}

// cellName converts a zero based column and one based row to an A1 reference
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}
