package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/emberlane/storefront-backend/pkg/config"
	"github.com/emberlane/storefront-backend/pkg/errors"
)

func testShopifyConfig(token string) config.ShopifyConfig {
	return config.ShopifyConfig{
		ShopDomain:      "example-shop.myshopify.com",
		StorefrontToken: token,
		APIVersion:      "2024-10",
		Timeout:         2 * time.Second,
	}
}

func TestProductVariantsNormalizesDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, `{"data": {"product": {
			"handle": "classic-tee",
			"title": "Classic Tee",
			"options": [{"name": "Size", "values": ["Small", "Medium"]}],
			"variants": {"edges": [
				{"node": {
					"id": "gid://shopify/ProductVariant/v1",
					"title": "Small",
					"availableForSale": true,
					"price": {"amount": "21.00", "currencyCode": "USD"},
					"selectedOptions": [{"name": "Size", "value": "Small"}]
				}},
				{"node": {
					"id": "gid://shopify/ProductVariant/v2",
					"title": "Medium",
					"availableForSale": false,
					"price": {"amount": "21.00", "currencyCode": "USD"},
					"selectedOptions": [{"name": "Size", "value": "Medium"}]
				}}
			]}
		}}}`)
	})

	detail, err := client.ProductVariants(context.Background(), "classic-tee")
	if err != nil {
		t.Fatalf("ProductVariants: %v", err)
	}
	if detail.Handle != "classic-tee" {
		t.Errorf("handle = %q", detail.Handle)
	}
	if len(detail.Options) != 1 || detail.Options[0].Name != "Size" {
		t.Errorf("options = %+v", detail.Options)
	}
	if len(detail.Variants) != 2 {
		t.Fatalf("variants = %d", len(detail.Variants))
	}
	if detail.Variants[0].AvailableForSale == detail.Variants[1].AvailableForSale {
		t.Error("availability should differ between variants")
	}
	if found := detail.FindVariant("gid://shopify/ProductVariant/v2"); found == nil || found.Title != "Medium" {
		t.Errorf("FindVariant = %+v", found)
	}
}

func TestProductVariantsMissingProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, `{"data": {"product": null}}`)
	})

	_, err := client.ProductVariants(context.Background(), "no-such-product")
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestProductsPaging(t *testing.T) {
	var captured struct {
		Variables map[string]any `json:"variables"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		respondJSON(t, w, `{"data": {"products": {
			"pageInfo": {"hasNextPage": true, "endCursor": "cursor-2"},
			"edges": [
				{"cursor": "cursor-1", "node": {
					"id": "gid://shopify/Product/1",
					"handle": "classic-tee",
					"title": "Classic Tee",
					"availableForSale": true,
					"tags": ["tops"],
					"priceRange": {"minVariantPrice": {"amount": "21.00", "currencyCode": "USD"}},
					"compareAtPriceRange": {"minVariantPrice": {"amount": "28.00", "currencyCode": "USD"}},
					"featuredImage": {"url": "https://cdn.example.com/tee.jpg", "altText": "tee"}
				}},
				{"cursor": "cursor-2", "node": {
					"id": "gid://shopify/Product/2",
					"handle": "plain-cap",
					"title": "Plain Cap",
					"availableForSale": false,
					"priceRange": {"minVariantPrice": {"amount": "15.00", "currencyCode": "USD"}},
					"compareAtPriceRange": {"minVariantPrice": {"amount": "0.00", "currencyCode": "USD"}}
				}}
			]
		}}}`)
	})

	page, err := client.Products(context.Background(), 2, "cursor-0")
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if captured.Variables["after"] != "cursor-0" {
		t.Errorf("after variable = %v", captured.Variables["after"])
	}
	if !page.HasNext || page.EndCursor != "cursor-2" {
		t.Errorf("page info = %+v", page)
	}
	if len(page.Products) != 2 {
		t.Fatalf("products = %d", len(page.Products))
	}
	first := page.Products[0]
	if first.CompareAtPrice == nil || first.CompareAtPrice.String() != "28.00" {
		t.Errorf("compare-at price = %v", first.CompareAtPrice)
	}
	if len(first.Images) != 1 {
		t.Errorf("images = %+v", first.Images)
	}
	second := page.Products[1]
	if second.CompareAtPrice != nil {
		t.Errorf("compare-at at or below price should be dropped, got %v", second.CompareAtPrice)
	}
	if second.Available {
		t.Error("second product should be unavailable")
	}
}

func TestProductsOmitsEmptyCursor(t *testing.T) {
	var captured struct {
		Variables map[string]any `json:"variables"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		respondJSON(t, w, `{"data": {"products": {"pageInfo": {"hasNextPage": false, "endCursor": ""}, "edges": []}}}`)
	})

	if _, err := client.Products(context.Background(), 10, ""); err != nil {
		t.Fatalf("Products: %v", err)
	}
	if _, present := captured.Variables["after"]; present {
		t.Errorf("after should be omitted, variables = %v", captured.Variables)
	}
}
