package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *Product {
	return &Product{
		PartID:  "RAP-1001",
		Type:    "Engine",
		Year:    2018,
		Make:    "Ford",
		Model:   "F-150",
		Details: "5.0L V8",
		Price:   2400,
	}
}

func TestProductApplyDefaults(t *testing.T) {
	p := validProduct()
	p.ApplyDefaults()

	assert.Equal(t, StatusInStock, p.Status)
	require.NotNil(t, p.Customer)
	assert.Equal(t, DefaultCustomer, *p.Customer)
	assert.Equal(t, DefaultProtection, *p.Protection)
	assert.Equal(t, DefaultLocation, *p.Location)
	assert.Nil(t, p.ImageURL)
	assert.Nil(t, p.Description)

	custom := "Jane"
	q := validProduct()
	q.Customer = &custom
	q.Status = StatusShipped
	q.ApplyDefaults()
	assert.Equal(t, "Jane", *q.Customer)
	assert.Equal(t, StatusShipped, q.Status)
}

func TestProductValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Product)
	}{
		{"missing partId", func(p *Product) { p.PartID = " " }},
		{"missing type", func(p *Product) { p.Type = "" }},
		{"missing year", func(p *Product) { p.Year = 0 }},
		{"missing make", func(p *Product) { p.Make = "" }},
		{"missing model", func(p *Product) { p.Model = "" }},
		{"missing details", func(p *Product) { p.Details = "" }},
		{"negative price", func(p *Product) { p.Price = -1 }},
		{"unknown status", func(p *Product) { p.Status = "Lost" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProduct()
			p.ApplyDefaults()
			tc.mutate(p)
			err := p.Validate()
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}

	p := validProduct()
	p.ApplyDefaults()
	assert.NoError(t, p.Validate())
}

func TestProductPatchChanges(t *testing.T) {
	price := 500
	patch := ProductPatch{Price: &price}
	assert.Equal(t, map[string]interface{}{"price": 500}, patch.Changes())
	assert.False(t, patch.Empty())
	assert.True(t, ProductPatch{}.Empty())
}

func TestProductPatchBlankImageClears(t *testing.T) {
	blank := "  "
	changes := ProductPatch{ImageURL: &blank}.Changes()
	v, ok := changes["image_url"]
	require.True(t, ok)
	assert.Nil(t, v)

	url := " /images/engine-1.jpg "
	assert.Equal(t, "/images/engine-1.jpg", ProductPatch{ImageURL: &url}.Changes()["image_url"])
}

func TestProductPatchValidate(t *testing.T) {
	empty := ""
	bad := "Lost"
	year := 0
	assert.True(t, errors.Is(ProductPatch{PartID: &empty}.Validate(), ErrValidation))
	assert.True(t, errors.Is(ProductPatch{Status: &bad}.Validate(), ErrValidation))
	assert.True(t, errors.Is(ProductPatch{Year: &year}.Validate(), ErrValidation))

	status := StatusOutOfStock
	assert.NoError(t, ProductPatch{Status: &status}.Validate())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"In Stock", "Processing", "Shipped", "Out of Stock"} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("in stock"))
}
