// Package shopify is a minimal Admin REST client for draft order checkout.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/lxryroom/draft-order-checkout/internal/config"
	"github.com/lxryroom/draft-order-checkout/internal/model"
	"github.com/lxryroom/draft-order-checkout/internal/obs"
)

// Client talks to the Shopify Admin REST API for one shop.
type Client struct {
	// BaseURL is the scheme+host prefix for Admin API calls. It defaults to
	// https://<shop domain> and is overridable in tests.
	BaseURL string

	http    *http.Client
	domain  string
	token   string
	version string
	titles  *titleCache

	draftOrdersCreated atomic.Uint64
	upstreamFailures   atomic.Uint64
	titleLookups       atomic.Uint64
}

// New constructs a Client from service configuration.
func New(cfg config.Config) *Client {
	return &Client{
		BaseURL: "https://" + cfg.ShopDomain,
		http:    &http.Client{Timeout: cfg.UpstreamTimeout},
		domain:  cfg.ShopDomain,
		token:   cfg.AccessToken,
		version: cfg.APIVersion,
		titles:  newTitleCache(),
	}
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/admin/api/%s%s", c.BaseURL, c.version, path)
}

type draftOrderCreated struct {
	DraftOrder struct {
		ID         json.Number `json:"id"`
		InvoiceURL string      `json:"invoice_url"`
	} `json:"draft_order"`
}

// CreateDraftOrder posts the assembled draft order and returns its id and
// checkout URL. A non-2xx response comes back as *UpstreamError; a 2xx
// response without an id comes back as ErrMissingID.
func (c *Client) CreateDraftOrder(ctx context.Context, payload model.DraftOrderRequest) (model.DraftOrderResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.DraftOrderResult{}, fmt.Errorf("marshal draft order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/draft_orders.json"), bytes.NewReader(body))
	if err != nil {
		return model.DraftOrderResult{}, fmt.Errorf("build draft order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.upstreamFailures.Add(1)
		return model.DraftOrderResult{}, fmt.Errorf("create draft order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.upstreamFailures.Add(1)
		return model.DraftOrderResult{}, fmt.Errorf("read draft order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.upstreamFailures.Add(1)
		return model.DraftOrderResult{}, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	var created draftOrderCreated
	if err := json.Unmarshal(raw, &created); err != nil {
		c.upstreamFailures.Add(1)
		return model.DraftOrderResult{}, ErrMissingID
	}
	id := created.DraftOrder.ID.String()
	if id == "" {
		c.upstreamFailures.Add(1)
		return model.DraftOrderResult{}, ErrMissingID
	}

	checkoutURL := created.DraftOrder.InvoiceURL
	if checkoutURL == "" {
		checkoutURL = fmt.Sprintf("https://%s/draft_orders/%s/checkout", c.domain, id)
	}
	c.draftOrdersCreated.Add(1)
	return model.DraftOrderResult{ID: model.ID(id), CheckoutURL: checkoutURL}, nil
}

type variantEnvelope struct {
	Variant struct {
		Title     string      `json:"title"`
		ProductID json.Number `json:"product_id"`
	} `json:"variant"`
}

type productEnvelope struct {
	Product struct {
		Title string `json:"title"`
	} `json:"product"`
}

// LookupTitle resolves a human-readable title for a variant, best effort.
// Any failure degrades to ok=false; callers fall back to a default title.
// Successful lookups are cached per variant id.
func (c *Client) LookupTitle(ctx context.Context, variantID, productID model.ID) (string, bool) {
	if variantID == "" {
		return "", false
	}
	if t, ok := c.titles.get(string(variantID)); ok {
		return t, true
	}
	c.titleLookups.Add(1)

	var v variantEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("/variants/%s.json", variantID), &v); err != nil {
		obs.Logger.Info("title_lookup_failed", "variant_id", string(variantID), "error", err.Error())
		return "", false
	}
	pid := string(productID)
	if pid == "" {
		pid = v.Variant.ProductID.String()
	}
	var p productEnvelope
	if pid != "" {
		if err := c.getJSON(ctx, fmt.Sprintf("/products/%s.json", pid), &p); err != nil {
			obs.Logger.Info("title_lookup_failed", "product_id", pid, "error", err.Error())
			return "", false
		}
	}

	title := p.Product.Title
	if v.Variant.Title != "" && v.Variant.Title != "Default Title" {
		if title != "" {
			title = title + " - " + v.Variant.Title
		} else {
			title = v.Variant.Title
		}
	}
	if title == "" {
		return "", false
	}
	c.titles.set(string(variantID), title)
	return title, true
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call admin api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("admin api status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode admin api response: %w", err)
	}
	return nil
}

// Metrics reports cumulative upstream call counters.
func (c *Client) Metrics() (created, failures, lookups uint64, cachedTitles int) {
	return c.draftOrdersCreated.Load(), c.upstreamFailures.Load(), c.titleLookups.Load(), c.titles.size()
}
