package shopify

import (
	"context"

	"github.com/emberlane/storefront-backend/internal/cart"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
)

// cartMutationPayload is the shared shape of every cart mutation result. A
// null cart with no user errors means the cart id no longer resolves on the
// platform side.
type cartMutationPayload struct {
	Cart       *cartPayload `json:"cart"`
	UserErrors []userError  `json:"userErrors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
}

// CreateCart provisions an empty cart on the platform.
func (c *Client) CreateCart(ctx context.Context) (*cart.Cart, error) {
	var data struct {
		CartCreate cartMutationPayload `json:"cartCreate"`
	}
	if err := c.query(ctx, "cart_create", mutationCartCreate, nil, &data); err != nil {
		return nil, err
	}
	return c.settleMutation("cart_create", data.CartCreate)
}

// GetCart fetches the current snapshot for a known cart id. A null cart in
// the response means the id is stale.
func (c *Client) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	var data struct {
		Cart *cartPayload `json:"cart"`
	}
	vars := map[string]any{"cartId": cartID}
	if err := c.query(ctx, "cart_get", queryCart, vars, &data); err != nil {
		return nil, err
	}
	if data.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart no longer exists")
	}
	snapshot, err := normalizeCart(data.Cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "cart_get returned a nonconforming cart")
	}
	return snapshot, nil
}

// AddLine adds merchandise at the given quantity and returns the new snapshot.
func (c *Client) AddLine(ctx context.Context, cartID, merchandiseID string, quantity int) (*cart.Cart, error) {
	var data struct {
		CartLinesAdd cartMutationPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"merchandiseId": merchandiseID, "quantity": quantity},
		},
	}
	if err := c.query(ctx, "cart_lines_add", mutationCartLinesAdd, vars, &data); err != nil {
		return nil, err
	}
	return c.settleMutation("cart_lines_add", data.CartLinesAdd)
}

// UpdateLineQuantity sets the quantity on an existing line.
func (c *Client) UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) (*cart.Cart, error) {
	var data struct {
		CartLinesUpdate cartMutationPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"id": lineID, "quantity": quantity},
		},
	}
	if err := c.query(ctx, "cart_lines_update", mutationCartLinesUpdate, vars, &data); err != nil {
		return nil, err
	}
	return c.settleMutation("cart_lines_update", data.CartLinesUpdate)
}

// UpdateLineVariant swaps the merchandise on an existing line, keeping or
// setting the quantity in the same write.
func (c *Client) UpdateLineVariant(ctx context.Context, cartID, lineID, merchandiseID string, quantity int) (*cart.Cart, error) {
	var data struct {
		CartLinesUpdate cartMutationPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"id": lineID, "merchandiseId": merchandiseID, "quantity": quantity},
		},
	}
	if err := c.query(ctx, "cart_lines_change_variant", mutationCartLinesUpdate, vars, &data); err != nil {
		return nil, err
	}
	return c.settleMutation("cart_lines_change_variant", data.CartLinesUpdate)
}

// RemoveLine deletes a line outright.
func (c *Client) RemoveLine(ctx context.Context, cartID, lineID string) (*cart.Cart, error) {
	var data struct {
		CartLinesRemove cartMutationPayload `json:"cartLinesRemove"`
	}
	vars := map[string]any{
		"cartId":  cartID,
		"lineIds": []string{lineID},
	}
	if err := c.query(ctx, "cart_lines_remove", mutationCartLinesRemove, vars, &data); err != nil {
		return nil, err
	}
	return c.settleMutation("cart_lines_remove", data.CartLinesRemove)
}

func (c *Client) settleMutation(op string, payload cartMutationPayload) (*cart.Cart, error) {
	if len(payload.UserErrors) > 0 {
		return nil, mapUserError(payload.UserErrors[0])
	}
	if payload.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart no longer exists")
	}
	snapshot, err := normalizeCart(payload.Cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformed, err, op+" returned a nonconforming cart")
	}
	return snapshot, nil
}

// mapUserError translates a platform rejection into a domain code. Input
// shape problems are the caller's fault; everything else is a state conflict
// surfaced with the platform's own message.
func mapUserError(ue userError) error {
	switch ue.Code {
	case "INVALID", "INVALID_MERCHANDISE_LINE", "LESS_THAN", "VALIDATION_CUSTOM":
		return pkgerrors.New(pkgerrors.CodeValidation, ue.Message)
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, ue.Message)
	}
}
