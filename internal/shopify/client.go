package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/emberlane/storefront-backend/pkg/config"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
	"github.com/emberlane/storefront-backend/pkg/logger"
	"github.com/emberlane/storefront-backend/pkg/metrics"
)

const tokenHeader = "X-Shopify-Storefront-Access-Token"

var (
	errTokenRequired  = errors.New("storefront access token is required")
	errLoggerRequired = errors.New("storefront logger is required")
)

// Client issues Storefront GraphQL calls with centralized auth, logging,
// circuit breaking, and error mapping. Every response is normalized at this
// boundary; loosely-typed payloads never cross into the store.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *logger.Logger
	metrics  *metrics.GatewayMetrics
}

// NewClient initializes the Storefront API wrapper and validates credentials.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger, met *metrics.GatewayMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	token := strings.TrimSpace(cfg.StorefrontToken)
	if token == "" {
		return nil, errTokenRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "shopify-storefront",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 30 * time.Second,
	})

	c := &Client{
		endpoint: cfg.Endpoint(),
		token:    token,
		http:     &http.Client{Timeout: timeout},
		breaker:  breaker,
		logger:   logg,
		metrics:  met,
	}

	logg.Info(ctx, "storefront client initialized")
	return c, nil
}

// Ping verifies reachability with the cheapest possible query.
func (c *Client) Ping(ctx context.Context) error {
	var payload struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	return c.query(ctx, "ping", queryShopName, nil, &payload)
}

// query runs one GraphQL document and decodes data into out. Transport
// failures, non-200 statuses, open breaker, GraphQL errors, and undecodable
// payloads each map to a distinct error code so the store can pick its
// recovery policy.
func (c *Client) query(ctx context.Context, op, document string, variables map[string]any, out any) error {
	start := time.Now()
	err := c.doQuery(ctx, op, document, variables, out)
	c.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		c.metrics.IncFailure(op, code)
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return err
	}
	c.metrics.IncSuccess(op)
	return nil
}

func (c *Client) doQuery(ctx context.Context, op, document string, variables map[string]any, out any) error {
	c.log(ctx, "request", op, map[string]any{"variables": variables})

	body, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode storefront request")
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "storefront circuit open")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("storefront %s failed", op))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "decode storefront response")
	}
	if len(envelope.Errors) > 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeMalformed, "storefront response missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMalformed, err, "decode storefront payload")
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build storefront request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront call")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read storefront response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("storefront returned status %d", resp.StatusCode))
	}
	return raw, nil
}

type graphqlError struct {
	Message string `json:"message"`
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("storefront %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("storefront %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
