package shopify

import (
	"errors"
	"fmt"
)

// ErrMissingID reports a draft order the platform claims to have created but
// returned without an id.
var ErrMissingID = errors.New("draft order response missing id")

// UpstreamError carries a non-success Admin API response so the caller can
// surface the platform's status code and raw body.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("shopify: upstream status %d", e.Status)
}
