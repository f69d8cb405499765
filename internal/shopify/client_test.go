package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lxryroom/draft-order-checkout/internal/config"
	"github.com/lxryroom/draft-order-checkout/internal/model"
	"github.com/lxryroom/draft-order-checkout/internal/obs"
)

func testClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	obs.InitLogger()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Config{
		ShopDomain:      "test-shop.myshopify.com",
		AccessToken:     "shpat_test",
		APIVersion:      config.DefaultAPIVersion,
		UpstreamTimeout: 2 * time.Second,
	}
	c := New(cfg)
	c.BaseURL = srv.URL
	return c, srv
}

func draftPayload() model.DraftOrderRequest {
	return model.DraftOrderRequest{DraftOrder: model.DraftOrder{
		LineItems:                 []model.LineItem{{Quantity: 1, Price: "10.00"}},
		UseCustomerDefaultAddress: true,
		Tags:                      []string{"custom-pricing", "draft-order-checkout"},
	}}
}

func TestCreateDraftOrder_InvoiceURL(t *testing.T) {
	var gotToken string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/draft_orders.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"draft_order":{"id":98765,"invoice_url":"https://pay.example/inv"}}`))
	}))
	res, err := c.CreateDraftOrder(context.Background(), draftPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "98765" || res.CheckoutURL != "https://pay.example/inv" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotToken != "shpat_test" {
		t.Fatalf("missing access token header")
	}
}

func TestCreateDraftOrder_SynthesizedCheckoutURL(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"draft_order":{"id":42}}`))
	}))
	res, err := c.CreateDraftOrder(context.Background(), draftPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://test-shop.myshopify.com/draft_orders/42/checkout"
	if res.CheckoutURL != want {
		t.Fatalf("checkout url: got %s want %s", res.CheckoutURL, want)
	}
}

func TestCreateDraftOrder_UpstreamRejection(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":"variant not found"}`))
	}))
	_, err := c.CreateDraftOrder(context.Background(), draftPayload())
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusUnprocessableEntity || ue.Body != `{"errors":"variant not found"}` {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
}

func TestCreateDraftOrder_MissingID(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"draft_order":{"invoice_url":"https://pay.example/inv"}}`))
	}))
	_, err := c.CreateDraftOrder(context.Background(), draftPayload())
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestLookupTitle_VariantAndProduct(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-01/variants/111.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"variant": map[string]any{"title": "Gold / L", "product_id": 9}})
		case "/admin/api/2024-01/products/9.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"product": map[string]any{"title": "Silk Robe"}})
		default:
			http.NotFound(w, r)
		}
	}))
	title, ok := c.LookupTitle(context.Background(), "111", "")
	if !ok || title != "Silk Robe - Gold / L" {
		t.Fatalf("unexpected title: %q ok=%v", title, ok)
	}
}

func TestLookupTitle_DefaultVariantLabelDropped(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-01/variants/222.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"variant": map[string]any{"title": "Default Title", "product_id": 9}})
		case "/admin/api/2024-01/products/9.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"product": map[string]any{"title": "Silk Robe"}})
		default:
			http.NotFound(w, r)
		}
	}))
	title, ok := c.LookupTitle(context.Background(), "222", "")
	if !ok || title != "Silk Robe" {
		t.Fatalf("unexpected title: %q ok=%v", title, ok)
	}
}

func TestLookupTitle_FailureIsNotFatal(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	if _, ok := c.LookupTitle(context.Background(), "333", ""); ok {
		t.Fatalf("expected lookup failure")
	}
	if _, ok := c.LookupTitle(context.Background(), "", ""); ok {
		t.Fatalf("expected no lookup without variant id")
	}
}

func TestLookupTitle_Cached(t *testing.T) {
	var calls atomic.Int64
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/admin/api/2024-01/variants/444.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"variant": map[string]any{"title": "Onyx", "product_id": 5}})
		case "/admin/api/2024-01/products/5.json":
			_ = json.NewEncoder(w).Encode(map[string]any{"product": map[string]any{"title": "Candle"}})
		default:
			http.NotFound(w, r)
		}
	}))
	for i := 0; i < 3; i++ {
		title, ok := c.LookupTitle(context.Background(), "444", "5")
		if !ok || title != "Candle - Onyx" {
			t.Fatalf("unexpected title: %q ok=%v", title, ok)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls.Load())
	}
	if _, _, _, cached := c.Metrics(); cached != 1 {
		t.Fatalf("expected 1 cached title, got %d", cached)
	}
}
