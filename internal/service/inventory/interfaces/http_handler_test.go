package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockpile/internal/service/inventory/application"
	"stockpile/internal/service/inventory/domain"
	"stockpile/internal/service/inventory/infrastructure"
)

type nopPublisher struct{}

func (nopPublisher) PublishStockEvent(context.Context, *domain.StockEvent) {}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := infrastructure.NewMemoryStockRepository(time.Second)
	service := application.NewStockService(repo, nopPublisher{}, nil, noop.NewTracerProvider().Tracer("test"))

	mux := http.NewServeMux()
	NewStockHandler(service).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func createStockHTTP(t *testing.T, server *httptest.Server, sku, productID string, quantity int) {
	t.Helper()
	body, _ := json.Marshal(application.CreateStockRequest{
		SKU:         sku,
		ProductID:   productID,
		ProductName: "widget",
		Quantity:    quantity,
		UnitPrice:   9.99,
		WarehouseID: "WH-1",
	})
	resp, err := http.Post(server.URL+"/api/v1/inventory/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateAndGetStock(t *testing.T) {
	server := newTestServer(t)
	createStockHTTP(t, server, "SKU-A", "P-A", 10)

	resp, err := http.Get(server.URL + "/api/v1/inventory/get?sku=SKU-A")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stock application.StockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stock))
	assert.Equal(t, "SKU-A", stock.SKU)
	assert.Equal(t, 10, stock.AvailableQuantity)
}

func TestGetUnknownSKUReturns404(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/inventory/get?sku=SKU-NOPE")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDuplicateCreateReturns409(t *testing.T) {
	server := newTestServer(t)
	createStockHTTP(t, server, "SKU-A", "P-A", 10)

	body, _ := json.Marshal(application.CreateStockRequest{
		SKU: "SKU-A", ProductID: "P-A", Quantity: 1, WarehouseID: "WH-1",
	})
	resp, err := http.Post(server.URL+"/api/v1/inventory/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestReserveContract(t *testing.T) {
	server := newTestServer(t)
	createStockHTTP(t, server, "SKU-A", "P-A", 5)

	// 成功预留
	resp, err := http.Post(server.URL+"/api/v1/inventory/reserve?productId=P-A&quantity=3", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result["reserved"])

	// 可用量不足: 409 且 reserved=false
	resp2, err := http.Post(server.URL+"/api/v1/inventory/reserve?productId=P-A&quantity=3", "", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusConflict, resp2.StatusCode)
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&result))
	assert.False(t, result["reserved"])

	// 未知商品: 404
	resp3, err := http.Post(server.URL+"/api/v1/inventory/reserve?productId=P-NOPE&quantity=1", "", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)

	// 非法数量: 400
	resp4, err := http.Post(server.URL+"/api/v1/inventory/reserve?productId=P-A&quantity=0", "", nil)
	require.NoError(t, err)
	defer resp4.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp4.StatusCode)
}

func TestReleaseRestoresAvailability(t *testing.T) {
	server := newTestServer(t)
	createStockHTTP(t, server, "SKU-A", "P-A", 5)

	resp, err := http.Post(server.URL+"/api/v1/inventory/reserve?productId=P-A&quantity=5", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(server.URL+"/api/v1/inventory/release?productId=P-A&quantity=5", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	check, err := http.Get(server.URL + "/api/v1/inventory/product?productId=P-A")
	require.NoError(t, err)
	defer check.Body.Close()
	var avail application.AvailabilityResponse
	require.NoError(t, json.NewDecoder(check.Body).Decode(&avail))
	assert.Equal(t, 5, avail.AvailableQuantity)
	assert.True(t, avail.InStock)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
