package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/observability"
	"golang.org/x/time/rate"
)

// FeedConfig configures a storefront feed client
type FeedConfig struct {
	StoreURL          string
	PageSize          int
	MaxPages          int
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// FeedClient loads the catalog from a storefront's public /products.json
// feed, following pages until an empty one is returned.
type FeedClient struct {
	httpClient  *http.Client
	config      FeedConfig
	rateLimiter *rate.Limiter
	logger      *observability.Logger
}

// NewFeedClient creates a new storefront feed client
func NewFeedClient(config FeedConfig, logger *observability.Logger) *FeedClient {
	if config.PageSize <= 0 || config.PageSize > 250 {
		config.PageSize = 250
	}
	if config.MaxPages <= 0 {
		config.MaxPages = 40
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2
	}
	if config.UserAgent == "" {
		config.UserAgent = "Cartwise/1.0"
	}
	if logger == nil {
		logger = observability.Nop()
	}

	return &FeedClient{
		httpClient:  &http.Client{Timeout: config.Timeout},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		logger:      logger.WithComponent("catalog_feed"),
	}
}

// Load fetches every page of the feed
func (c *FeedClient) Load(ctx context.Context) ([]domain.RawProduct, error) {
	var products []domain.RawProduct
	for page := 1; page <= c.config.MaxPages; page++ {
		batch, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for _, p := range batch {
			products = append(products, MapFeedProduct(p, c.config.StoreURL))
		}
		if len(batch) < c.config.PageSize {
			break
		}
	}

	c.logger.Info().Int("products", len(products)).Msg("loaded storefront feed")
	return products, nil
}

// fetchPage retries transient failures up to three times
func (c *FeedClient) fetchPage(ctx context.Context, page int) ([]feedProduct, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.config.PageSize))
	params.Set("page", strconv.Itoa(page))
	reqURL := strings.TrimRight(c.config.StoreURL, "/") + "/products.json?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Int("page", page).Msg("feed request failed")
			lastErr = err
		} else if status != http.StatusOK {
			c.logger.Warn().Int("status", status).Int("attempt", attempt).Int("page", page).Msg("feed returned error status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRemoteCatalog, status)
			if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
				return nil, lastErr
			}
		} else {
			var resp feedResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("%w: decode page %d: %v", domain.ErrRemoteCatalog, page, err)
			}
			return resp.Products, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt*500) * time.Millisecond):
		}
	}
	return nil, lastErr
}

func (c *FeedClient) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRemoteCatalog, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrRemoteCatalog, err)
	}
	return body, resp.StatusCode, nil
}

type feedResponse struct {
	Products []feedProduct `json:"products"`
}

type feedProduct struct {
	ID          domain.FlexString `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	ProductType string            `json:"product_type"`
	Vendor      string            `json:"vendor"`
	Tags        feedTags          `json:"tags"`
	Variants    []feedVariant     `json:"variants"`
	Images      []feedImage       `json:"images"`
	Options     []feedOption      `json:"options"`
}

type feedVariant struct {
	Price          *domain.FlexFloat `json:"price"`
	CompareAtPrice *domain.FlexFloat `json:"compare_at_price"`
	Available      *bool             `json:"available"`
	Option1        string            `json:"option1"`
	Option2        string            `json:"option2"`
	Option3        string            `json:"option3"`
}

func (v feedVariant) option(i int) string {
	switch i {
	case 0:
		return v.Option1
	case 1:
		return v.Option2
	case 2:
		return v.Option3
	}
	return ""
}

type feedImage struct {
	Src string `json:"src"`
}

type feedOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// feedTags accepts either a JSON array or a comma-separated string.
type feedTags []string

func (t *feedTags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = splitList(joined)
	return nil
}
