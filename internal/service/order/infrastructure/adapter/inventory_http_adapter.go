// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stockpile/internal/pkg/constants"
	"stockpile/internal/pkg/httpclient"
	"stockpile/internal/pkg/logger"
	"stockpile/internal/service/order/port"
)

// InventoryHTTPAdapter 通过 HTTP 实现 port.InventoryGateway。
// 每次调用带独立超时；超时或传输失败一律当作预留失败上报，
// 由调用方决定是否补偿，绝不允许悬挂的预留逃过补偿。
type InventoryHTTPAdapter struct {
	client      *httpclient.Client
	callTimeout time.Duration
}

func NewInventoryHTTPAdapter(client *httpclient.Client, callTimeout time.Duration) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, callTimeout: callTimeout}
}

// GetAvailability 查询商品的可售视图。商品不存在返回 (nil, nil)。
func (a *InventoryHTTPAdapter) GetAvailability(ctx context.Context, productID string) (*port.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("productId", productID)

	var avail port.Availability
	err := a.client.GetJSON(ctx, constants.InventoryService, constants.InventoryAvailabilityPath, params, &avail)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &avail, nil
}

// Reserve 请求预占库存。409/404 表示业务拒绝，返回 (false, nil)；
// 其余错误（含超时）按基础设施失败返回。
func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, productID string, quantity int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("productId", productID)
	params.Set("quantity", strconv.Itoa(quantity))

	err := a.client.CallService(ctx, constants.InventoryService, constants.InventoryReservePath, params)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.Code == http.StatusConflict || statusErr.Code == http.StatusNotFound) {
			return false, nil
		}
		logger.Ctx(ctx).Warn().Err(err).
			Str("product_id", productID).
			Msg("Reserve call failed")
		return false, err
	}
	return true, nil
}

// Release 归还预留。释放在库存侧按已预留量截断，404 视为无事可做。
func (a *InventoryHTTPAdapter) Release(ctx context.Context, productID string, quantity int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("productId", productID)
	params.Set("quantity", strconv.Itoa(quantity))

	err := a.client.CallService(ctx, constants.InventoryService, constants.InventoryReleasePath, params)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
