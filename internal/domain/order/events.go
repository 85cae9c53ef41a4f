package order

import "time"

// RoutingKeyStatusChanged 订单状态变更事件的路由键(topic exchange)
const RoutingKeyStatusChanged = "order.status.changed"

// StatusChangedEvent 订单状态变更事件
// 教学要点:
// 1. 事件是聚合对账(AggregateReconciler)的触发源之一
// 2. 事件允许丢失:周期性全量扫描会自愈,所以发布失败只记日志不回滚
// 3. 携带TotalAmount便于下游在不回查订单库的情况下做粗粒度统计
type StatusChangedEvent struct {
	OrderNo        string      `json:"order_no"`
	CustomerID     uint        `json:"customer_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	TotalAmount    int64       `json:"total_amount"` // 分
	OccurredAt     time.Time   `json:"occurred_at"`
}

// NewStatusChangedEvent 从流转后的订单与历史记录构造事件
func NewStatusChangedEvent(o *Order, entry *HistoryEntry) StatusChangedEvent {
	var previous OrderStatus
	if entry.PreviousStatus != nil {
		previous = *entry.PreviousStatus
	}
	return StatusChangedEvent{
		OrderNo:        o.OrderNo,
		CustomerID:     o.CustomerID,
		PreviousStatus: previous,
		NewStatus:      entry.NewStatus,
		TotalAmount:    o.Total,
		OccurredAt:     entry.CreatedAt,
	}
}
