package domain

import (
	"context"
	"time"
)

const (
	EventWarehouseCreated     = "WAREHOUSE_CREATED"
	EventWarehouseUpdated     = "WAREHOUSE_UPDATED"
	EventWarehouseDeactivated = "WAREHOUSE_DEACTIVATED"
)

// WarehouseEvent 仓库主数据变更通知。
type WarehouseEvent struct {
	Code       string    `json:"code"`
	EventType  string    `json:"eventType"`
	Active     bool      `json:"active"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher 仓库事件的出站端口。
type EventPublisher interface {
	PublishWarehouseEvent(ctx context.Context, event *WarehouseEvent)
}

func NewWarehouseEvent(warehouse *Warehouse, eventType string) *WarehouseEvent {
	return &WarehouseEvent{
		Code:       warehouse.Code,
		EventType:  eventType,
		Active:     warehouse.Active,
		OccurredAt: time.Now(),
	}
}
