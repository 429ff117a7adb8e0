package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
)

type stubIDs struct{ n int }

func (g *stubIDs) NewID() string {
	g.n++
	return fmt.Sprintf("order-%d", g.n)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(catalog.Product{
		ID:    "item-a",
		Name:  "Item A",
		Price: decimal.NewFromInt(500),
	}, 10)
	store.SeedProduct(catalog.Product{
		ID:    "item-b",
		Name:  "Item B",
		Price: decimal.NewFromInt(100),
	}, 2)

	svc := appOrder.NewService(
		memory.NewOrderRepository(store),
		memory.NewStockRepository(store),
		memory.NewCatalogRepository(store),
		memory.NewTxManager(store),
		&stubIDs{},
		nil,
		nil,
	)
	return NewHandler(svc, nil).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, actorID, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actorID != "" {
		req.Header.Set(headerActorID, actorID)
	}
	if role != "" {
		req.Header.Set(headerActorRole, role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) orderResponse {
	t.Helper()
	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateOrder_HappyPath(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-a","quantity":3}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeOrder(t, rec)
	assert.Equal(t, "order-1", resp.OrderID)
	assert.Equal(t, "user-1", resp.OwnerID)
	assert.Equal(t, "created", resp.Status)
	assert.Equal(t, "created", resp.Outcome)
	assert.True(t, decimal.NewFromInt(1500).Equal(resp.Total))
}

func TestCreateOrder_MissingActorHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "", "",
		`{"items":[{"product_id":"item-a","quantity":1}]}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "", `{"items":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_UnknownItem(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-z","quantity":1}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body validationErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"item-z"}, body.ItemIDs)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-b","quantity":5}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body validationErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"item-b"}, body.ItemIDs)
	assert.Equal(t, 2, body.Available)
	assert.Equal(t, 5, body.Requested)
}

func TestPayAndCancel_Lifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-a","quantity":3}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeOrder(t, rec).OrderID

	rec = doJSON(t, router, http.MethodPost, "/orders/"+orderID+"/pay", "user-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", decodeOrder(t, rec).Status)

	// A repeated pay is a success reporting the no-op.
	rec = doJSON(t, router, http.MethodPost, "/orders/"+orderID+"/pay", "user-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already_paid", decodeOrder(t, rec).Outcome)

	rec = doJSON(t, router, http.MethodPost, "/orders/"+orderID+"/cancel", "user-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decodeOrder(t, rec).Status)

	// Paying a cancelled order is a conflict.
	rec = doJSON(t, router, http.MethodPost, "/orders/"+orderID+"/pay", "user-1", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type failingOrders struct {
	domorder.Repository
}

func (r *failingOrders) Create(context.Context, tx.Scope, *domorder.Order) error {
	return errors.New("disk 7 offline: /var/data/orders")
}

// Storage failures surface as a bare 500; the failure text belongs in
// the log, not in the response body.
func TestInternalError_DetailNotEchoedToClient(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(catalog.Product{
		ID:    "item-a",
		Name:  "Item A",
		Price: decimal.NewFromInt(500),
	}, 10)

	svc := appOrder.NewService(
		&failingOrders{Repository: memory.NewOrderRepository(store)},
		memory.NewStockRepository(store),
		memory.NewCatalogRepository(store),
		memory.NewTxManager(store),
		&stubIDs{},
		nil,
		nil,
	)
	router := NewHandler(svc, nil).Router()

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-a","quantity":1}]}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	raw := rec.Body.String()
	assert.NotContains(t, raw, "disk 7 offline")
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "internal error", body["error"])
}

func TestGetOrder_AuthzMapping(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "user-1", "",
		`{"items":[{"product_id":"item-a","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decodeOrder(t, rec).OrderID

	rec = doJSON(t, router, http.MethodGet, "/orders/"+orderID, "user-2", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/"+orderID, "ops-1", "admin", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/order-404", "user-1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
