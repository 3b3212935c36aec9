package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RequestIDHeader carries the client-generated batch identifier so the
// service can deduplicate a retried commit.
const RequestIDHeader = "X-Request-ID"

// InventoryClient talks to the inventory service over HTTP. It implements
// both CatalogFetcher and BatchSubmitter.
type InventoryClient struct {
	http *resty.Client
}

type itemsResponse struct {
	Items []Item `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewInventoryClient creates a client for the service at baseURL.
func NewInventoryClient(baseURL string) *InventoryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &InventoryClient{http: client}
}

// FetchItems loads the full catalog.
func (c *InventoryClient) FetchItems(ctx context.Context) ([]Item, error) {
	return c.fetch(ctx, "")
}

// FetchItemsFiltered loads a server-side filtered catalog.
func (c *InventoryClient) FetchItemsFiltered(ctx context.Context, query string) ([]Item, error) {
	return c.fetch(ctx, query)
}

func (c *InventoryClient) fetch(ctx context.Context, query string) ([]Item, error) {
	var body itemsResponse
	req := c.http.R().SetContext(ctx).SetResult(&body)

	path := "/api/items"
	if query != "" {
		path = "/api/items/search"
		req.SetQueryParam("q", query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching items: unexpected status %d", resp.StatusCode())
	}
	return body.Items, nil
}

// SubmitBatchOut posts the batch commit. A non-2xx response with an error
// payload comes back as a *CommitError carrying the service's message
// verbatim; transport failures come back wrapped.
func (c *InventoryClient) SubmitBatchOut(ctx context.Context, req CommitRequest) (*CommitAck, error) {
	var ack CommitAck
	var errBody errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, req.RequestID).
		SetBody(req).
		SetResult(&ack).
		SetError(&errBody).
		Post("/api/stock/out/batch")
	if err != nil {
		return nil, fmt.Errorf("submitting batch stock-out: %w", err)
	}
	if resp.IsError() {
		msg := errBody.Error
		if msg == "" {
			msg = fmt.Sprintf("batch stock-out failed with status %d", resp.StatusCode())
		}
		return nil, &CommitError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return &ack, nil
}
