package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"freegrab/pkg/config"
	errs "freegrab/pkg/errors"
	"freegrab/pkg/logger"
	"freegrab/pkg/metrics"
)

// maxErrorBody bounds how much of an error body is kept for logs
const maxErrorBody = 200

// Client talks to the marketplace services on behalf of one credential
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	urls       config.MarketplaceConfig
	credential string
	logger     logger.Logger
}

// NewClient creates a marketplace client authenticated with credential
func NewClient(cfg config.MarketplaceConfig, credential string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	headers := map[string]string{
		"Accept":          "application/json, text/html;q=0.9, */*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		headers:    headers,
		urls:       cfg,
		credential: credential,
		logger:     log,
	}
}

// ItemURL returns the public page of an item
func (c *Client) ItemURL(itemID uint64) string {
	return ItemURL(c.urls.WebURL, itemID)
}

// doRequest performs an HTTP request with the configured headers and the
// credential cookie
func (c *Client) doRequest(req *http.Request, endpoint string) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.credential != "" {
		req.Header.Set("Cookie", CookieName+"="+c.credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"endpoint": endpoint,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, 0, err, "network error")
	}

	logger.LogRequest(c.logger, req.Method, req.URL.Path, resp.StatusCode, duration)
	return resp, nil
}

func (c *Client) get(ctx context.Context, url, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, err, "failed to create request")
	}
	return c.doRequest(req, endpoint)
}

// getJSON performs a GET request and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, url, endpoint string, target interface{}) error {
	resp, err := c.get(ctx, url, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	return c.decode(resp, target)
}

func (c *Client) decode(resp *http.Response, target interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, resp.StatusCode, err, "failed to read response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          resp.Request.URL.Path,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return errs.Wrap(errs.ErrorTypeParsing, resp.StatusCode, err, "failed to parse JSON")
	}
	return nil
}

// checkResponseStatus maps non-2xx statuses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.Path,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		return errs.New(errs.ErrorTypeAuth, resp.StatusCode, "credential rejected")
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return errs.New(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	}

	if errs.IsRetryableStatusCode(resp.StatusCode) {
		c.logger.ErrorWithFields("server error", fields)
		return errs.New(errs.ErrorTypeServerError, resp.StatusCode, "server error")
	}

	c.logger.ErrorWithFields("unexpected API error", fields)
	return errs.New(errs.ErrorTypeUnknown, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
}

// AuthenticatedUser resolves the client's credential to a user
func (c *Client) AuthenticatedUser(ctx context.Context) (*AuthenticatedUser, error) {
	var user AuthenticatedUser
	if err := c.getJSON(ctx, AuthenticatedUserURL(c.urls.UsersURL), "authenticated_user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errs.New(errs.ErrorTypeAuth, http.StatusUnauthorized, "credential does not resolve to a user")
	}
	return &user, nil
}

// HomePage fetches the HTML home page. The caller closes the body.
func (c *Client) HomePage(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.get(ctx, HomeURL(c.urls.WebURL), "home")
	if err != nil {
		return nil, err
	}
	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// SearchItems fetches one page of free catalog items
func (c *Client) SearchItems(ctx context.Context, q SearchQuery, cursor string) (*SearchResponse, error) {
	url := SearchURL(c.urls.CatalogURL, q, cursor)

	c.logger.DebugWithFields("fetching catalog page", map[string]interface{}{
		"category":    q.Category,
		"subcategory": q.Subcategory,
		"cursor":      cursor,
	})

	var page SearchResponse
	if err := c.getJSON(ctx, url, "search", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// IsOwned reports whether userID already owns itemID
func (c *Client) IsOwned(ctx context.Context, userID, itemID uint64) (bool, error) {
	var owned bool
	if err := c.getJSON(ctx, IsOwnedURL(c.urls.InventoryURL, userID, itemID), "is_owned", &owned); err != nil {
		return false, err
	}
	return owned, nil
}

// Purchase submits a zero-price purchase of item. The response body is
// decoded whatever the status, since rejections carry their codes there.
func (c *Client) Purchase(ctx context.Context, csrfToken string, item CatalogItem) (*PurchaseResponse, error) {
	body, err := json.Marshal(PurchaseRequest{
		ExpectedCurrency: CurrencyRobux,
		ExpectedPrice:    MaxPrice,
		ExpectedSellerID: item.CreatorTargetID,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, err, "failed to encode purchase")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, PurchaseURL(c.urls.EconomyURL, item.ProductID), bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-CSRF-TOKEN", csrfToken)

	resp, err := c.doRequest(req, "purchase")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result PurchaseResponse
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// String describes the client for logs without leaking the credential
func (c *Client) String() string {
	return fmt.Sprintf("marketplace.Client{catalog=%s, authenticated=%t}", c.urls.CatalogURL, c.credential != "")
}
