package superbid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://offer-query.superbid.net"
	DefaultSiteURL = "https://exchange.superbid.net"
)

type Options struct {
	BaseURL       string
	SiteURL       string
	Timeout       time.Duration
	Locale        string
	OrderBy       string
	PortalID      string
	RequestOrigin string
	SearchType    string
	TimeZoneID    string
	UserAgent     string
	Logger        *zap.Logger
}

type Client struct {
	baseURL    string
	siteURL    string
	opts       Options
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("superbid API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	siteURL := strings.TrimRight(strings.TrimSpace(opts.SiteURL), "/")
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return &Client{
		baseURL:    baseURL,
		siteURL:    siteURL,
		opts:       opts,
		httpClient: httpClient,
	}
}

// SiteURL is the public site the offer pages live under.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// OfferURL builds the canonical page URL stored as the reference link.
func OfferURL(siteURL string, id OfferID) string {
	return strings.TrimRight(siteURL, "/") + "/oferta/" + id.String()
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	req.Header.Set("Origin", c.siteURL)
	req.Header.Set("Referer", c.siteURL+"/")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetOffers returns the first page of open offers for a category slug.
func (c *Client) GetOffers(ctx context.Context, category string, pageSize int) ([]Offer, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	query := url.Values{}
	query.Set("urlSeo", c.siteURL+"/categorias/"+category)
	query.Set("locale", valueOr(c.opts.Locale, "pt_BR"))
	query.Set("orderBy", valueOr(c.opts.OrderBy, "score:desc"))
	query.Set("pageNumber", "1")
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("portalId", valueOr(c.opts.PortalID, "[2,15]"))
	query.Set("requestOrigin", valueOr(c.opts.RequestOrigin, "marketplace"))
	query.Set("searchType", valueOr(c.opts.SearchType, "openedAll"))
	query.Set("timeZoneId", valueOr(c.opts.TimeZoneID, "America/Sao_Paulo"))

	body, err := c.doRequest(ctx, "/seo/offers/", query)
	if err != nil {
		return nil, err
	}
	offers, skipped, err := parseOffers(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 && c.opts.Logger != nil {
		c.opts.Logger.Warn("malformed offers skipped",
			zap.String("category", category),
			zap.Int("skipped", skipped),
			zap.Int("kept", len(offers)),
		)
	}
	return offers, nil
}

func valueOr(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
