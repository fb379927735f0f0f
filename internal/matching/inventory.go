package matching

import (
	"strconv"
	"strings"

	"github.com/rapidautoparts/storefront/internal/domain"
	"golang.org/x/text/cases"
)

// InventoryFilter is the free text and part type filter of the inventory page
type InventoryFilter struct {
	Text string `query:"q" json:"q"`
	Type string `query:"type" json:"type"`
}

// FilterInventory returns the in-stock products matching both filters, preserving order.
// Empty filter values match everything.
func FilterInventory(products []domain.Product, f InventoryFilter) []domain.Product {
	fold := newFolder()
	text := fold(strings.TrimSpace(f.Text))
	typ := fold(strings.TrimSpace(f.Type))

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !p.InStock() {
			continue
		}
		if typ != "" && !strings.Contains(fold(p.Type), typ) {
			continue
		}
		if text != "" && !matchesText(fold, p, text) {
			continue
		}
		result = append(result, p)
	}
	return result
}

func matchesText(fold func(string) string, p domain.Product, text string) bool {
	for _, field := range []string{p.Make, p.Model, p.PartID, p.Details} {
		if strings.Contains(fold(field), text) {
			return true
		}
	}
	return strings.Contains(strconv.Itoa(p.Year), text)
}

// newFolder returns a case folding func; cases.Caser is stateful so each call site gets its own
func newFolder() func(string) string {
	caser := cases.Fold()
	return func(s string) string {
		return caser.String(s)
	}
}
