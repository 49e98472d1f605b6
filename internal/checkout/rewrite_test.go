package checkout

import "testing"

func TestRewritePreservesPathAndQuery(t *testing.T) {
	t.Parallel()

	r := NewRewriter("demo-shop.myshopify.com", "checkout.demo-shop.com")

	got := r.Rewrite("https://demo-shop.myshopify.com/cart/abc123?key=xyz")
	want := "https://checkout.demo-shop.com/cart/abc123?key=xyz"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRewriteIsCaseInsensitiveOnHost(t *testing.T) {
	t.Parallel()

	r := NewRewriter("Demo-Shop.MyShopify.com", "checkout.demo-shop.com")

	got := r.Rewrite("https://demo-shop.myshopify.com/cart/c/Z2NwLXVz?key=1")
	want := "https://checkout.demo-shop.com/cart/c/Z2NwLXVz?key=1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRewritePassesThroughNonMatchingURLs(t *testing.T) {
	t.Parallel()

	r := NewRewriter("demo-shop.myshopify.com", "checkout.demo-shop.com")

	cases := []string{
		"https://other-shop.myshopify.com/cart/abc",
		"https://example.com/cart",
		"://not-a-url",
		"",
	}
	for _, raw := range cases {
		if got := r.Rewrite(raw); got != raw {
			t.Fatalf("expected %q unchanged, got %q", raw, got)
		}
	}
}

func TestRewriteWithEmptyConfigIsIdentity(t *testing.T) {
	t.Parallel()

	r := NewRewriter("", "")
	raw := "https://demo-shop.myshopify.com/cart/abc"
	if got := r.Rewrite(raw); got != raw {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
