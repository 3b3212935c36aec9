package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryClientFetchItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "1", "code": "A100", "name": "Bolt", "quantity": 40, "price": "2.50"},
				{"id": "2", "code": "A200", "name": "Nut", "quantity": 15, "price": "1.00"},
			},
		})
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL)
	items, err := client.FetchItems(context.Background())

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "A100", items[0].Code)
	assert.Equal(t, 40, items[0].QuantityOnHand)
	assert.Equal(t, "2.50", items[0].UnitPrice.String())
}

func TestInventoryClientFetchItemsFiltered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/items/search", r.URL.Path)
		assert.Equal(t, "bolt", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "1", "code": "A100", "name": "Bolt", "quantity": 40, "price": "2.50"},
			},
		})
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL)
	items, err := client.FetchItemsFiltered(context.Background(), "bolt")

	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestInventoryClientSubmitBatchOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stock/out/batch", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "req-1", r.Header.Get(RequestIDHeader))

		var req CommitRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "req-1", req.RequestID)
		assert.Len(t, req.Lines, 1)
		assert.Equal(t, "1", req.Lines[0].ItemID)
		assert.Equal(t, 5, req.Lines[0].Quantity)
		assert.Equal(t, "2.50", req.Lines[0].UnitPrice.String())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CommitAck{RequestID: "req-1", Applied: 1})
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL)
	cart := filledCart(t)

	ack, err := client.SubmitBatchOut(context.Background(), BuildCommitRequest("req-1", cart))

	assert.NoError(t, err)
	assert.Equal(t, 1, ack.Applied)
}

func TestInventoryClientSubmitBatchOutServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "insufficient stock for item A100"})
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL)
	_, err := client.SubmitBatchOut(context.Background(), BuildCommitRequest("req-1", filledCart(t)))

	var commitErr *CommitError
	assert.ErrorAs(t, err, &commitErr)
	assert.Equal(t, http.StatusBadRequest, commitErr.StatusCode)
	assert.Equal(t, "insufficient stock for item A100", commitErr.Message)
}

func TestInventoryClientSubmitBatchOutOpaqueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewInventoryClient(srv.URL)
	_, err := client.SubmitBatchOut(context.Background(), BuildCommitRequest("req-1", filledCart(t)))

	var commitErr *CommitError
	assert.ErrorAs(t, err, &commitErr)
	assert.Contains(t, commitErr.Message, "502")
}

func TestInventoryClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewInventoryClient(srv.URL)
	_, err := client.FetchItems(context.Background())

	assert.Error(t, err)
	var commitErr *CommitError
	assert.False(t, errors.As(err, &commitErr), "transport failures are not CommitErrors")
}
