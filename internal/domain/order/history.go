package order

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// HistoryEntry 订单状态历史(审计轨迹)
// 教学要点:
// 1. 只增不改(Append-Only),纠纷仲裁依赖这份轨迹,任何修改都是事故
// 2. PreviousStatus为nil表示创建记录,每个订单有且仅有一条
// 3. 每次状态流转恰好产生一条记录:历史条数 == 状态变更次数 + 1
type HistoryEntry struct {
	ID             uint
	OrderNo        string
	PreviousStatus *OrderStatus // nil = 创建记录
	NewStatus      OrderStatus
	ChangedBy      uint
	ChangedByRole  actor.Role
	Notes          string // 理由/备注(取消理由、退货明细汇总等)
	TrackingNumber string // 发货记录附带运单号
	CreatedAt      time.Time
}

// IsCreation 是否为创建记录
func (e *HistoryEntry) IsCreation() bool {
	return e.PreviousStatus == nil
}

// NewCreationEntry 订单创建记录(previous=nil, new=Placed)
func NewCreationEntry(o *Order, by actor.Actor) *HistoryEntry {
	return &HistoryEntry{
		OrderNo:       o.OrderNo,
		NewStatus:     OrderStatusPlaced,
		ChangedBy:     by.UserID,
		ChangedByRole: by.Role,
		Notes:         "订单创建",
		CreatedAt:     o.CreatedAt,
	}
}

// newTransitionEntry 状态流转记录(由ApplyTransition产出)
func newTransitionEntry(o *Order, previous OrderStatus, by actor.Actor, notes, trackingNumber string, at time.Time) *HistoryEntry {
	prev := previous
	return &HistoryEntry{
		OrderNo:        o.OrderNo,
		PreviousStatus: &prev,
		NewStatus:      o.Status,
		ChangedBy:      by.UserID,
		ChangedByRole:  by.Role,
		Notes:          notes,
		TrackingNumber: trackingNumber,
		CreatedAt:      at,
	}
}
