// Package model defines request and payload types for draft order checkout.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/lxryroom/draft-order-checkout/internal/props"
)

// ID is a catalog or order identifier. Storefronts send Shopify ids both as
// JSON numbers and as strings; ID accepts either and marshals numeric values
// back as numbers, which the Admin REST API expects for variant_id.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid identifier: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) numeric() bool {
	if id == "" {
		return false
	}
	// "007" would not be a valid JSON number literal.
	if len(id) > 1 && id[0] == '0' {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Scalar decodes any JSON scalar into its string form; null becomes "".
type Scalar string

// UnmarshalJSON stringifies strings, numbers, and booleans.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	*s = Scalar(b)
	return nil
}

// OrderRequest is the storefront's checkout request body. Only CustomPrice is
// strictly required; the identifiers enrich the resulting line item when
// present.
type OrderRequest struct {
	ProductID     ID         `json:"productId"`
	VariantID     ID         `json:"variantId"`
	Quantity      Scalar     `json:"quantity"`
	CustomPrice   Scalar     `json:"customPrice"`
	CustomerEmail string     `json:"customerEmail"`
	Note          string     `json:"note"`
	Properties    props.List `json:"properties"`
}

// LineItem is one draft order line in the Admin REST schema. A variant-priced
// line carries VariantID; a custom line carries Title plus the shipping and
// tax flags instead.
type LineItem struct {
	Title            string           `json:"title,omitempty"`
	VariantID        ID               `json:"variant_id,omitempty"`
	Quantity         int              `json:"quantity"`
	Price            string           `json:"price"`
	Properties       []props.Property `json:"properties"`
	RequiresShipping *bool            `json:"requires_shipping,omitempty"`
	Taxable          *bool            `json:"taxable,omitempty"`
}

// Customer carries the optional customer association for a draft order.
type Customer struct {
	Email string `json:"email"`
}

// DraftOrder is the order-creation payload body.
type DraftOrder struct {
	LineItems                 []LineItem `json:"line_items"`
	Customer                  *Customer  `json:"customer,omitempty"`
	Note                      string     `json:"note,omitempty"`
	UseCustomerDefaultAddress bool       `json:"use_customer_default_address"`
	Tags                      []string   `json:"tags"`
}

// DraftOrderRequest wraps DraftOrder under the envelope key the Admin REST
// API expects.
type DraftOrderRequest struct {
	DraftOrder DraftOrder `json:"draft_order"`
}

// DraftOrderResult is the outcome of a successful draft order creation.
type DraftOrderResult struct {
	ID          ID
	CheckoutURL string
}
