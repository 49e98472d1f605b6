package cart

import (
	"github.com/emberlane/storefront-backend/pkg/money"
)

// Cart is the normalized snapshot of the remote cart. All money values come
// from the platform's own computation; the store never derives them from unit
// prices.
type Cart struct {
	ID            string `json:"id"`
	Lines         []Line `json:"lines"`
	TotalQuantity int    `json:"total_quantity"`
	Cost          Cost   `json:"cost"`
	CheckoutURL   string `json:"checkout_url"`
}

type Cost struct {
	Subtotal money.Amount  `json:"subtotal"`
	Total    money.Amount  `json:"total"`
	Shipping *money.Amount `json:"shipping,omitempty"`
}

// Line is one merchandise selection at a quantity. The merchandise fields are
// a point-in-time display snapshot fetched with the cart; they may go stale
// against the live catalog until the next full refresh.
type Line struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	ProductTitle    string           `json:"product_title"`
	ProductHandle   string           `json:"product_handle"`
	UnitPrice       money.Amount     `json:"unit_price"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	Image           *Image           `json:"image,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Clone returns a deep copy safe to mutate independently.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Lines = make([]Line, len(c.Lines))
	copy(dup.Lines, c.Lines)
	for i := range dup.Lines {
		if img := dup.Lines[i].Merchandise.Image; img != nil {
			imgCopy := *img
			dup.Lines[i].Merchandise.Image = &imgCopy
		}
		opts := dup.Lines[i].Merchandise.SelectedOptions
		if len(opts) > 0 {
			optsCopy := make([]SelectedOption, len(opts))
			copy(optsCopy, opts)
			dup.Lines[i].Merchandise.SelectedOptions = optsCopy
		}
	}
	if c.Cost.Shipping != nil {
		shipping := *c.Cost.Shipping
		dup.Cost.Shipping = &shipping
	}
	return &dup
}

// FindLine returns the index of the line with the given id, or -1.
func (c *Cart) FindLine(lineID string) int {
	if c == nil {
		return -1
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
