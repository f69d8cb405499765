// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Line item strategies for draft order creation.
const (
	// StrategyVariant references the catalog variant directly and relies on
	// the platform honoring the supplied price override.
	StrategyVariant = "variant"
	// StrategyCustom sends a catalog-free line item with an explicit title
	// and price, so the override always takes effect.
	StrategyCustom = "custom"
)

// DefaultAPIVersion pins the Admin REST API version.
const DefaultAPIVersion = "2024-01"

var defaultOrigins = []string{
	"https://lxryroom.com",
	"https://www.lxryroom.com",
}

// Config holds configuration knobs for the HTTP server and the Shopify client.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	ShopDomain  string
	AccessToken string
	APIVersion  string

	AllowedOrigins   []string
	LineItemStrategy string
	UpstreamTimeout  time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func listenv(key string, def []string) []string {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Load collects configuration from environment with defaults.
//
// Both env var spellings used by the storefront deployments are honored for
// the shop domain and the admin token.
func Load() Config {
	strategy := getenv("LINE_ITEM_STRATEGY", StrategyCustom)
	if strategy != StrategyVariant {
		strategy = StrategyCustom
	}
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  durenvs("SHUTDOWN_TIMEOUT", 15),
		ShopDomain:       getenv("SHOP_DOMAIN", getenv("SHOPIFY_DOMAIN", "")),
		AccessToken:      getenv("SHOPIFY_ADMIN_TOKEN", getenv("SHOPIFY_ACCESS_TOKEN", "")),
		APIVersion:       getenv("SHOPIFY_API_VERSION", DefaultAPIVersion),
		AllowedOrigins:   listenv("ALLOWED_ORIGINS", defaultOrigins),
		LineItemStrategy: strategy,
		UpstreamTimeout:  durenvs("UPSTREAM_TIMEOUT", 10),
	}
}

// Ready reports whether the Shopify credentials needed to serve checkout
// requests are present.
func (c Config) Ready() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}
