package catalog

import "github.com/emberlane/storefront-backend/pkg/money"

// Product is a catalog listing record for the presentation layer.
type Product struct {
	ID             string        `json:"id"`
	Handle         string        `json:"handle"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Price          money.Amount  `json:"price"`
	CompareAtPrice *money.Amount `json:"compare_at_price,omitempty"`
	Images         []Image       `json:"images,omitempty"`
	Options        []Option      `json:"options,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	Available      bool          `json:"available"`
}

// ProductDetail carries the option matrix and variants for one product, used
// to render in-stock states on variant selectors.
type ProductDetail struct {
	Handle   string    `json:"handle"`
	Title    string    `json:"title"`
	Options  []Option  `json:"options"`
	Variants []Variant `json:"variants"`
}

type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"available_for_sale"`
	Price            money.Amount     `json:"price"`
	SelectedOptions  []SelectedOption `json:"selected_options"`
	Image            *Image           `json:"image,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Page is one slice of the catalog listing with its continuation cursor.
type Page struct {
	Products []Product `json:"products"`
	HasNext  bool      `json:"has_next"`
	EndCursor string   `json:"end_cursor,omitempty"`
}

// FindVariant returns the variant with the given id, or nil.
func (d *ProductDetail) FindVariant(variantID string) *Variant {
	if d == nil {
		return nil
	}
	for i := range d.Variants {
		if d.Variants[i].ID == variantID {
			return &d.Variants[i]
		}
	}
	return nil
}
