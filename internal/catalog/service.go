package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
)

type gateway interface {
	ProductVariants(ctx context.Context, handle string) (*ProductDetail, error)
	Products(ctx context.Context, first int, after string) (*Page, error)
}

// Service answers read-only catalog lookups. Variant availability is
// advisory: results may run slightly stale against the live catalog and
// must never block cart writes, so lookups are collapsed with singleflight
// and served from a short-TTL cache.
type Service interface {
	ProductVariants(ctx context.Context, handle string) (*ProductDetail, error)
	ListProducts(ctx context.Context, first int, after string) (*Page, error)
	// VariantKnownUnavailable reports whether a cached, unexpired lookup
	// marked the variant as not for sale. It never reaches the platform; an
	// unknown variant reports false.
	VariantKnownUnavailable(variantID string) bool
}

type service struct {
	gw  gateway
	ttl time.Duration

	sfg   singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	detail  *ProductDetail
	expires time.Time
}

// NewService builds the catalog read service.
func NewService(gw gateway, variantCacheTTL time.Duration) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	return &service{
		gw:    gw,
		ttl:   variantCacheTTL,
		cache: make(map[string]cacheEntry),
	}, nil
}

func (s *service) ProductVariants(ctx context.Context, handle string) (*ProductDetail, error) {
	if handle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required")
	}

	if detail := s.cached(handle); detail != nil {
		return detail, nil
	}

	v, err, _ := s.sfg.Do(handle, func() (any, error) {
		if detail := s.cached(handle); detail != nil {
			return detail, nil
		}
		detail, err := s.gw.ProductVariants(ctx, handle)
		if err != nil {
			return nil, err
		}
		s.store(handle, detail)
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ProductDetail), nil
}

func (s *service) ListProducts(ctx context.Context, first int, after string) (*Page, error) {
	if first <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page size must be positive")
	}
	return s.gw.Products(ctx, first, after)
}

func (s *service) VariantKnownUnavailable(variantID string) bool {
	if variantID == "" || s.ttl <= 0 {
		return false
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.cache {
		if now.After(entry.expires) {
			continue
		}
		for _, v := range entry.detail.Variants {
			if v.ID == variantID {
				return !v.AvailableForSale
			}
		}
	}
	return false
}

func (s *service) cached(handle string) *ProductDetail {
	if s.ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[handle]
	if !ok || time.Now().After(entry.expires) {
		return nil
	}
	return entry.detail
}

func (s *service) store(handle string, detail *ProductDetail) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[handle] = cacheEntry{detail: detail, expires: time.Now().Add(s.ttl)}
}
