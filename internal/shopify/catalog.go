package shopify

import (
	"context"

	"github.com/emberlane/storefront-backend/internal/catalog"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
)

// ProductVariants fetches the option matrix and variants for one product.
func (c *Client) ProductVariants(ctx context.Context, handle string) (*catalog.ProductDetail, error) {
	var data struct {
		Product *productPayload `json:"product"`
	}
	vars := map[string]any{"handle": handle}
	if err := c.query(ctx, "product_variants", queryProductVariants, vars, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	detail, err := normalizeProductDetail(data.Product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "product_variants returned a nonconforming product")
	}
	return detail, nil
}

// Products fetches one page of the catalog listing.
func (c *Client) Products(ctx context.Context, first int, after string) (*catalog.Page, error) {
	var data struct {
		Products connection[productPayload] `json:"products"`
	}
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	if err := c.query(ctx, "products", queryProducts, vars, &data); err != nil {
		return nil, err
	}

	page := &catalog.Page{
		Products:  make([]catalog.Product, 0, len(data.Products.Edges)),
		HasNext:   data.Products.PageInfo.HasNextPage,
		EndCursor: data.Products.PageInfo.EndCursor,
	}
	for _, edge := range data.Products.Edges {
		product, err := normalizeProduct(edge.Node)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "products returned a nonconforming listing")
		}
		page.Products = append(page.Products, product)
	}
	return page, nil
}
