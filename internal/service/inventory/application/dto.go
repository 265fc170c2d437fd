// internal/service/inventory/application/dto.go
package application

import (
	"time"

	"stockpile/internal/service/inventory/domain"
)

// CreateStockRequest 是创建库存记录的入参。
type CreateStockRequest struct {
	SKU           string  `json:"sku"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	Description   string  `json:"description"`
	Quantity      int     `json:"quantity"`
	ReorderLevel  int     `json:"reorderLevel"`
	MaxStockLevel int     `json:"maxStockLevel"`
	UnitPrice     float64 `json:"unitPrice"`
	WarehouseID   string  `json:"warehouseId"`
	Location      string  `json:"location"`
}

// StockResponse 是库存记录的完整视图。
type StockResponse struct {
	SKU               string    `json:"sku"`
	ProductID         string    `json:"productId"`
	ProductName       string    `json:"productName"`
	Description       string    `json:"description,omitempty"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reservedQuantity"`
	AvailableQuantity int       `json:"availableQuantity"`
	ReorderLevel      int       `json:"reorderLevel"`
	MaxStockLevel     int       `json:"maxStockLevel"`
	UnitPrice         float64   `json:"unitPrice"`
	WarehouseID       string    `json:"warehouseId"`
	Location          string    `json:"location,omitempty"`
	LowStock          bool      `json:"lowStock"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AvailabilityResponse 是订单侧网关询问可用量时的响应载荷。
type AvailabilityResponse struct {
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	SKU               string  `json:"sku"`
	AvailableQuantity int     `json:"availableQuantity"`
	UnitPrice         float64 `json:"unitPrice"`
	InStock           bool    `json:"inStock"`
}

func toStockResponse(record *domain.StockRecord) *StockResponse {
	return &StockResponse{
		SKU:               record.SKU,
		ProductID:         record.ProductID,
		ProductName:       record.ProductName,
		Description:       record.Description,
		Quantity:          record.Quantity,
		ReservedQuantity:  record.ReservedQuantity,
		AvailableQuantity: record.AvailableQuantity(),
		ReorderLevel:      record.ReorderLevel,
		MaxStockLevel:     record.MaxStockLevel,
		UnitPrice:         record.UnitPrice,
		WarehouseID:       record.WarehouseID,
		Location:          record.Location,
		LowStock:          record.IsLowStock(),
		Version:           record.Version,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func toAvailabilityResponse(record *domain.StockRecord) *AvailabilityResponse {
	available := record.AvailableQuantity()
	return &AvailabilityResponse{
		ProductID:         record.ProductID,
		ProductName:       record.ProductName,
		SKU:               record.SKU,
		AvailableQuantity: available,
		UnitPrice:         record.UnitPrice,
		InStock:           available > 0,
	}
}
