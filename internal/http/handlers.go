package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lxryroom/draft-order-checkout/internal/config"
	httpopenapi "github.com/lxryroom/draft-order-checkout/internal/http/openapi"
	"github.com/lxryroom/draft-order-checkout/internal/model"
	"github.com/lxryroom/draft-order-checkout/internal/obs"
	"github.com/lxryroom/draft-order-checkout/internal/price"
	"github.com/lxryroom/draft-order-checkout/internal/shopify"
)

// draftOrderTags mark every order created through this endpoint.
var draftOrderTags = []string{"custom-pricing", "draft-order-checkout"}

type App struct {
	Cfg     config.Config
	Shopify *shopify.Client
	started time.Time
}

// checkoutResponse is the success envelope returned to the storefront.
type checkoutResponse struct {
	Success      bool     `json:"success"`
	DraftOrderID model.ID `json:"draftOrderId"`
	CheckoutURL  string   `json:"checkoutUrl"`
	Message      string   `json:"message"`
}

func NewApp(cfg config.Config, sc *shopify.Client) *App {
	return &App{Cfg: cfg, Shopify: sc, started: time.Now()}
}

// checkoutHandler accepts a custom-priced checkout request, creates a draft
// order on the platform, and answers with the checkout URL.
func (a *App) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	if !a.Cfg.Ready() {
		WriteJSONError(w, http.StatusInternalServerError, "Server not configured: missing SHOP_DOMAIN or SHOPIFY_ADMIN_TOKEN", "")
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	priceStr, err := price.Parse(string(req.CustomPrice))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid custom price", "")
		return
	}
	qty := price.Quantity(string(req.Quantity), 1)

	draft := model.DraftOrder{
		LineItems:                 []model.LineItem{a.buildLineItem(r.Context(), &req, priceStr, qty)},
		Note:                      req.Note,
		UseCustomerDefaultAddress: true,
		Tags:                      draftOrderTags,
	}
	if req.CustomerEmail != "" {
		draft.Customer = &model.Customer{Email: req.CustomerEmail}
	}

	res, err := a.Shopify.CreateDraftOrder(r.Context(), model.DraftOrderRequest{DraftOrder: draft})
	if err != nil {
		a.writeCheckoutError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(checkoutResponse{
		Success:      true,
		DraftOrderID: res.ID,
		CheckoutURL:  res.CheckoutURL,
		Message:      "Draft order created successfully",
	})
	obs.Logger.Info("draft_order_created",
		"request_id", RequestIDFromContext(r.Context()),
		"draft_order_id", string(res.ID),
		"price", priceStr,
		"quantity", qty,
		"strategy", a.Cfg.LineItemStrategy,
	)
}

// buildLineItem normalizes properties and assembles either a variant-priced
// or a custom line item, depending on configuration and available ids.
func (a *App) buildLineItem(ctx context.Context, req *model.OrderRequest, priceStr string, qty int) model.LineItem {
	list := &req.Properties
	// The synthesized entry always wins and always sits last.
	list.Delete("Calculated Price")
	list.Add("Calculated Price", priceStr)

	if a.Cfg.LineItemStrategy == config.StrategyVariant && req.VariantID != "" {
		return model.LineItem{
			VariantID:  req.VariantID,
			Quantity:   qty,
			Price:      priceStr,
			Properties: list.Items(),
		}
	}

	// A custom line has no catalog reference, so the ids ride along as
	// properties for the merchant's benefit.
	if req.ProductID != "" && !list.Has("Product ID") {
		list.Add("Product ID", string(req.ProductID))
	}
	if req.VariantID != "" && !list.Has("Variant ID") {
		list.Add("Variant ID", string(req.VariantID))
	}

	title, ok := a.Shopify.LookupTitle(ctx, req.VariantID, req.ProductID)
	if !ok {
		title = "Custom Item"
	}
	shipping := true
	taxable := false
	return model.LineItem{
		Title:            title,
		Quantity:         qty,
		Price:            priceStr,
		Properties:       list.Items(),
		RequiresShipping: &shipping,
		Taxable:          &taxable,
	}
}

func (a *App) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *shopify.UpstreamError
	switch {
	case errors.As(err, &ue):
		obs.Logger.Warn("draft_order_rejected",
			"request_id", RequestIDFromContext(r.Context()),
			"upstream_status", ue.Status,
		)
		WriteJSONError(w, ue.Status, "Failed to create draft order", ue.Body)
	case errors.Is(err, shopify.ErrMissingID):
		obs.Logger.Warn("draft_order_missing_id",
			"request_id", RequestIDFromContext(r.Context()),
		)
		WriteJSONError(w, http.StatusBadGateway, "Draft order created, but response was missing an ID", "")
	default:
		obs.Logger.Error("draft_order_error",
			"request_id", RequestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeInternalError(w, err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	created, failures, lookups, cached := a.Shopify.Metrics()
	m := map[string]any{
		"draft_orders_created": created,
		"upstream_failures":    failures,
		"title_lookups":        lookups,
		"cached_titles":        cached,
		"uptime_sec":           time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
