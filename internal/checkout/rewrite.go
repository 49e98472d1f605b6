package checkout

import (
	"net/url"
	"strings"
)

// Rewriter swaps the platform storefront host on checkout URLs for the
// custom checkout domain, leaving scheme, path and query untouched. A URL
// that does not match the source host passes through unchanged; a broken
// link is worse than an unbranded one.
type Rewriter struct {
	sourceHost string
	targetHost string
}

func NewRewriter(sourceHost, targetHost string) Rewriter {
	return Rewriter{
		sourceHost: strings.ToLower(strings.TrimSpace(sourceHost)),
		targetHost: strings.TrimSpace(targetHost),
	}
}

func (r Rewriter) Rewrite(raw string) string {
	if raw == "" || r.sourceHost == "" || r.targetHost == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.EqualFold(parsed.Host, r.sourceHost) {
		return raw
	}
	parsed.Host = r.targetHost
	return parsed.String()
}
