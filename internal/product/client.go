package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Client reads products from product-service over HTTP. order-service uses it
// instead of the shared database when PRODUCT_SERVICE_URL is set.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) GetByID(ctx context.Context, id string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%s", c.BaseURL, url.PathEscape(id)), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build product request")
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch product")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, errors.Newf("fetch product %s: %s", id, res.Status)
	}
	var p Product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return &p, nil
}
