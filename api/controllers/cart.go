package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberlane/storefront-backend/api/middleware"
	"github.com/emberlane/storefront-backend/api/responses"
	"github.com/emberlane/storefront-backend/api/validators"
	cartsvc "github.com/emberlane/storefront-backend/internal/cart"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
	"github.com/emberlane/storefront-backend/pkg/logger"
)

type addLineRequest struct {
	MerchandiseID string `json:"merchandise_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

// updateLineRequest drives both quantity edits and variant swaps. Quantity is
// a pointer so an explicit zero survives decoding; zero removes the line.
type updateLineRequest struct {
	MerchandiseID string `json:"merchandise_id"`
	Quantity      *int   `json:"quantity" validate:"required,min=0"`
}

type checkoutURLResponse struct {
	CheckoutURL *string `json:"checkout_url"`
}

// availabilityChecker answers from local cache only; it must never turn an
// add into an extra remote round trip.
type availabilityChecker interface {
	VariantKnownUnavailable(variantID string) bool
}

func sessionStore(mgr *cartsvc.Manager, logg *logger.Logger, r *http.Request) (*cartsvc.Store, error) {
	sessionID := middleware.SessionID(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return mgr.ForSession(r.Context(), sessionID), nil
}

// CartView returns the session's current cart view.
func CartView(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartAddLine adds merchandise to the cart, creating the remote cart when
// the session has none yet. Merchandise the catalog cache already marked
// unavailable is rejected before any remote call; the platform stays the
// authority for everything else.
func CartAddLine(mgr *cartsvc.Manager, availability availabilityChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if availability != nil && availability.VariantKnownUnavailable(payload.MerchandiseID) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "merchandise is unavailable"))
			return
		}

		if err := store.AddItem(r.Context(), payload.MerchandiseID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartUpdateLine edits one line. A body with merchandise_id swaps the
// variant; a bare quantity adjusts it, with zero removing the line.
func CartUpdateLine(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}

		var payload updateLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.MerchandiseID != "" {
			err = store.UpdateVariant(r.Context(), lineID, payload.MerchandiseID, *payload.Quantity)
		} else {
			err = store.UpdateQuantity(r.Context(), lineID, *payload.Quantity)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartRemoveLine drops one line from the cart.
func CartRemoveLine(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}

		if err := store.RemoveItem(r.Context(), lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartOpen and CartClose flip the slide-over visibility flag so every client
// surface renders the same open state.
func CartOpen(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Open()
		responses.WriteSuccess(w, store.Snapshot())
	}
}

func CartClose(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Close()
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartCheckoutURL hands off to checkout: the platform URL with the host
// rewritten to the custom checkout domain, or null for an empty cart.
func CartCheckoutURL(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(mgr, logg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp checkoutURLResponse
		if url := store.CheckoutURL(); url != "" {
			resp.CheckoutURL = &url
		}
		responses.WriteSuccess(w, resp)
	}
}
