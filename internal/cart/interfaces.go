package cart

import "context"

// Gateway is the remote commerce surface the store mutates through. Every
// mutation returns one full normalized snapshot; the gateway never exposes
// intermediate state and never auto-recovers a stale cart id.
type Gateway interface {
	CreateCart(ctx context.Context) (*Cart, error)
	GetCart(ctx context.Context, cartID string) (*Cart, error)
	AddLine(ctx context.Context, cartID, merchandiseID string, quantity int) (*Cart, error)
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, quantity int) (*Cart, error)
	UpdateLineVariant(ctx context.Context, cartID, lineID, merchandiseID string, quantity int) (*Cart, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (*Cart, error)
}

// IDStore persists a session's cart identifier and nothing else. A missing
// id is reported as ("", nil), not as an error.
type IDStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, cartID string) error
	Clear(ctx context.Context) error
}
