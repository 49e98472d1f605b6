package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
	"github.com/emberlane/storefront-backend/pkg/money"
)

type stubGateway struct {
	variantCalls int64
	productCalls int64
	delay        time.Duration
	variantErr   error
	detail       *ProductDetail
	page         *Page
}

func (g *stubGateway) ProductVariants(_ context.Context, handle string) (*ProductDetail, error) {
	atomic.AddInt64(&g.variantCalls, 1)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.variantErr != nil {
		return nil, g.variantErr
	}
	if g.detail != nil {
		return g.detail, nil
	}
	return &ProductDetail{
		Handle: handle,
		Title:  "Classic Tee",
		Variants: []Variant{
			{ID: "v1", Title: "Small", AvailableForSale: true, Price: money.MustParse("21")},
		},
	}, nil
}

func (g *stubGateway) Products(context.Context, int, string) (*Page, error) {
	atomic.AddInt64(&g.productCalls, 1)
	if g.page != nil {
		return g.page, nil
	}
	return &Page{}, nil
}

func TestProductVariantsRequiresHandle(t *testing.T) {
	svc, err := NewService(&stubGateway{}, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.ProductVariants(context.Background(), "")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestProductVariantsServedFromCache(t *testing.T) {
	gw := &stubGateway{}
	svc, err := NewService(gw, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		detail, err := svc.ProductVariants(ctx, "classic-tee")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if detail.Handle != "classic-tee" {
			t.Errorf("lookup %d handle = %q", i, detail.Handle)
		}
	}
	if calls := atomic.LoadInt64(&gw.variantCalls); calls != 1 {
		t.Errorf("gateway calls = %d, want 1 with a warm cache", calls)
	}
}

func TestProductVariantsCacheExpires(t *testing.T) {
	gw := &stubGateway{}
	svc, err := NewService(gw, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	if _, err := svc.ProductVariants(ctx, "classic-tee"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := svc.ProductVariants(ctx, "classic-tee"); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if calls := atomic.LoadInt64(&gw.variantCalls); calls != 2 {
		t.Errorf("gateway calls = %d, want 2 after expiry", calls)
	}
}

func TestProductVariantsCollapsesConcurrentLookups(t *testing.T) {
	gw := &stubGateway{delay: 50 * time.Millisecond}
	svc, err := NewService(gw, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ProductVariants(ctx, "classic-tee"); err != nil {
				t.Errorf("concurrent lookup: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls := atomic.LoadInt64(&gw.variantCalls); calls != 1 {
		t.Errorf("gateway calls = %d, concurrent lookups should collapse to 1", calls)
	}
}

func TestProductVariantsErrorNotCached(t *testing.T) {
	gw := &stubGateway{variantErr: pkgerrors.New(pkgerrors.CodeDependency, "platform down")}
	svc, err := NewService(gw, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	if _, err := svc.ProductVariants(ctx, "classic-tee"); err == nil {
		t.Fatal("expected an error")
	}
	gw.variantErr = nil
	detail, err := svc.ProductVariants(ctx, "classic-tee")
	if err != nil {
		t.Fatalf("lookup after recovery: %v", err)
	}
	if detail == nil || detail.Handle != "classic-tee" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestVariantKnownUnavailableReadsCacheOnly(t *testing.T) {
	gw := &stubGateway{detail: &ProductDetail{
		Handle: "classic-tee",
		Title:  "Classic Tee",
		Variants: []Variant{
			{ID: "v1", Title: "Small", AvailableForSale: true, Price: money.MustParse("21")},
			{ID: "v2", Title: "Medium", AvailableForSale: false, Price: money.MustParse("21")},
		},
	}}
	svc, err := NewService(gw, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if svc.VariantKnownUnavailable("v2") {
		t.Error("cold cache should not report unavailability")
	}
	if _, err := svc.ProductVariants(context.Background(), "classic-tee"); err != nil {
		t.Fatalf("priming lookup: %v", err)
	}

	calls := atomic.LoadInt64(&gw.variantCalls)
	if !svc.VariantKnownUnavailable("v2") {
		t.Error("cached sold-out variant not reported")
	}
	if svc.VariantKnownUnavailable("v1") {
		t.Error("available variant reported as unavailable")
	}
	if svc.VariantKnownUnavailable("v404") {
		t.Error("unknown variant reported as unavailable")
	}
	if got := atomic.LoadInt64(&gw.variantCalls); got != calls {
		t.Errorf("availability checks hit the gateway: calls %d -> %d", calls, got)
	}
}

func TestListProductsValidatesPageSize(t *testing.T) {
	svc, err := NewService(&stubGateway{}, time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.ListProducts(context.Background(), 0, ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if _, err := svc.ListProducts(context.Background(), -5, ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestNewServiceRequiresGateway(t *testing.T) {
	if _, err := NewService(nil, time.Minute); err == nil {
		t.Fatal("expected an error for a nil gateway")
	}
}
