package shopify

import (
	"fmt"

	"github.com/emberlane/storefront-backend/internal/cart"
	"github.com/emberlane/storefront-backend/internal/catalog"
	"github.com/emberlane/storefront-backend/pkg/money"
)

// Wire payloads mirror the GraphQL projection loosely. Normalization is the
// only place they are read; anything that fails to parse here is rejected
// before it can reach the store.

type cartPayload struct {
	ID            string          `json:"id"`
	CheckoutURL   string          `json:"checkoutUrl"`
	TotalQuantity int             `json:"totalQuantity"`
	Cost          costPayload     `json:"cost"`
	Lines         connection[linePayload] `json:"lines"`
}

type costPayload struct {
	SubtotalAmount *moneyPayload `json:"subtotalAmount"`
	TotalAmount    *moneyPayload `json:"totalAmount"`
	ShippingAmount *moneyPayload `json:"shippingAmount"`
}

type linePayload struct {
	ID          string             `json:"id"`
	Quantity    int                `json:"quantity"`
	Merchandise merchandisePayload `json:"merchandise"`
}

type merchandisePayload struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Price           *moneyPayload           `json:"price"`
	SelectedOptions []selectedOptionPayload `json:"selectedOptions"`
	Image           *imagePayload           `json:"image"`
	Product         struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
}

type selectedOptionPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type imagePayload struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type moneyPayload struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type connection[T any] struct {
	Edges []struct {
		Cursor string `json:"cursor"`
		Node   T      `json:"node"`
	} `json:"edges"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

func normalizeCart(p *cartPayload) (*cart.Cart, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("cart id is empty")
	}
	subtotal, err := parseMoney(p.Cost.SubtotalAmount, "subtotal")
	if err != nil {
		return nil, err
	}
	total, err := parseMoney(p.Cost.TotalAmount, "total")
	if err != nil {
		return nil, err
	}

	snapshot := &cart.Cart{
		ID:            p.ID,
		CheckoutURL:   p.CheckoutURL,
		TotalQuantity: p.TotalQuantity,
		Cost: cart.Cost{
			Subtotal: subtotal,
			Total:    total,
		},
		Lines: make([]cart.Line, 0, len(p.Lines.Edges)),
	}
	if p.Cost.ShippingAmount != nil {
		shipping, err := parseMoney(p.Cost.ShippingAmount, "shipping")
		if err != nil {
			return nil, err
		}
		snapshot.Cost.Shipping = &shipping
	}

	for _, edge := range p.Lines.Edges {
		line, err := normalizeLine(edge.Node)
		if err != nil {
			return nil, err
		}
		snapshot.Lines = append(snapshot.Lines, line)
	}
	return snapshot, nil
}

func normalizeLine(p linePayload) (cart.Line, error) {
	if p.ID == "" {
		return cart.Line{}, fmt.Errorf("line id is empty")
	}
	if p.Quantity <= 0 {
		return cart.Line{}, fmt.Errorf("line %s has quantity %d", p.ID, p.Quantity)
	}
	if p.Merchandise.ID == "" {
		return cart.Line{}, fmt.Errorf("line %s has no merchandise", p.ID)
	}
	unitPrice, err := parseMoney(p.Merchandise.Price, "unit price")
	if err != nil {
		return cart.Line{}, fmt.Errorf("line %s: %w", p.ID, err)
	}

	line := cart.Line{
		ID:       p.ID,
		Quantity: p.Quantity,
		Merchandise: cart.Merchandise{
			ID:            p.Merchandise.ID,
			Title:         p.Merchandise.Title,
			ProductTitle:  p.Merchandise.Product.Title,
			ProductHandle: p.Merchandise.Product.Handle,
			UnitPrice:     unitPrice,
		},
	}
	for _, opt := range p.Merchandise.SelectedOptions {
		line.Merchandise.SelectedOptions = append(line.Merchandise.SelectedOptions, cart.SelectedOption{
			Name:  opt.Name,
			Value: opt.Value,
		})
	}
	if img := p.Merchandise.Image; img != nil && img.URL != "" {
		line.Merchandise.Image = &cart.Image{URL: img.URL, AltText: img.AltText}
	}
	return line, nil
}

func parseMoney(p *moneyPayload, field string) (money.Amount, error) {
	if p == nil {
		return money.Amount{}, fmt.Errorf("%s amount is missing", field)
	}
	amount, err := money.Parse(p.Amount)
	if err != nil {
		return money.Amount{}, fmt.Errorf("%s amount %q: %w", field, p.Amount, err)
	}
	return amount, nil
}

type productPayload struct {
	ID                  string                `json:"id"`
	Handle              string                `json:"handle"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Tags                []string              `json:"tags"`
	AvailableForSale    bool                  `json:"availableForSale"`
	Options             []optionPayload       `json:"options"`
	FeaturedImage       *imagePayload         `json:"featuredImage"`
	PriceRange          priceRangePayload     `json:"priceRange"`
	CompareAtPriceRange priceRangePayload     `json:"compareAtPriceRange"`
	Variants            connection[variantPayload] `json:"variants"`
}

type optionPayload struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type priceRangePayload struct {
	MinVariantPrice *moneyPayload `json:"minVariantPrice"`
}

type variantPayload struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	AvailableForSale bool                    `json:"availableForSale"`
	Price            *moneyPayload           `json:"price"`
	SelectedOptions  []selectedOptionPayload `json:"selectedOptions"`
	Image            *imagePayload           `json:"image"`
}

func normalizeProductDetail(p *productPayload) (*catalog.ProductDetail, error) {
	if p.Handle == "" {
		return nil, fmt.Errorf("product handle is empty")
	}
	detail := &catalog.ProductDetail{
		Handle:   p.Handle,
		Title:    p.Title,
		Options:  normalizeOptions(p.Options),
		Variants: make([]catalog.Variant, 0, len(p.Variants.Edges)),
	}
	for _, edge := range p.Variants.Edges {
		variant, err := normalizeVariant(edge.Node)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.Handle, err)
		}
		detail.Variants = append(detail.Variants, variant)
	}
	return detail, nil
}

func normalizeVariant(p variantPayload) (catalog.Variant, error) {
	if p.ID == "" {
		return catalog.Variant{}, fmt.Errorf("variant id is empty")
	}
	price, err := parseMoney(p.Price, "variant price")
	if err != nil {
		return catalog.Variant{}, err
	}
	variant := catalog.Variant{
		ID:               p.ID,
		Title:            p.Title,
		AvailableForSale: p.AvailableForSale,
		Price:            price,
	}
	for _, opt := range p.SelectedOptions {
		variant.SelectedOptions = append(variant.SelectedOptions, catalog.SelectedOption{
			Name:  opt.Name,
			Value: opt.Value,
		})
	}
	if img := p.Image; img != nil && img.URL != "" {
		variant.Image = &catalog.Image{URL: img.URL, AltText: img.AltText}
	}
	return variant, nil
}

func normalizeProduct(p productPayload) (catalog.Product, error) {
	if p.Handle == "" {
		return catalog.Product{}, fmt.Errorf("product handle is empty")
	}
	price, err := parseMoney(p.PriceRange.MinVariantPrice, "product price")
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s: %w", p.Handle, err)
	}
	product := catalog.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		Options:     normalizeOptions(p.Options),
		Tags:        p.Tags,
		Available:   p.AvailableForSale,
	}
	if compare := p.CompareAtPriceRange.MinVariantPrice; compare != nil && compare.Amount != "" {
		compareAt, err := parseMoney(compare, "compare-at price")
		if err != nil {
			return catalog.Product{}, fmt.Errorf("product %s: %w", p.Handle, err)
		}
		if compareAt.Cmp(price) > 0 {
			product.CompareAtPrice = &compareAt
		}
	}
	if img := p.FeaturedImage; img != nil && img.URL != "" {
		product.Images = []catalog.Image{{URL: img.URL, AltText: img.AltText}}
	}
	return product, nil
}

func normalizeOptions(payloads []optionPayload) []catalog.Option {
	if len(payloads) == 0 {
		return nil
	}
	options := make([]catalog.Option, 0, len(payloads))
	for _, opt := range payloads {
		options = append(options, catalog.Option{Name: opt.Name, Values: opt.Values})
	}
	return options
}
