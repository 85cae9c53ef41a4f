package complaint

import "time"

// RoutingKeyStatusChanged 投诉状态变更事件的路由键(topic exchange)
const RoutingKeyStatusChanged = "complaint.status.changed"

// StatusChangedEvent 投诉状态变更事件
// 与订单事件一样,仅作为聚合对账的触发源,允许丢失(全量扫描自愈)
type StatusChangedEvent struct {
	ComplaintNo    string          `json:"complaint_no"`
	CustomerID     uint            `json:"customer_id"`
	PreviousStatus ComplaintStatus `json:"previous_status"`
	NewStatus      ComplaintStatus `json:"new_status"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewStatusChangedEvent 从变更后的投诉与历史记录构造事件
// 仅状态类历史(created/status_changed)产生事件,指派不触发对账
func NewStatusChangedEvent(c *Complaint, entry *HistoryEntry) StatusChangedEvent {
	var previous, current ComplaintStatus
	if entry.PreviousStatus != nil {
		previous = *entry.PreviousStatus
	}
	if entry.NewStatus != nil {
		current = *entry.NewStatus
	}
	return StatusChangedEvent{
		ComplaintNo:    c.ComplaintNo,
		CustomerID:     c.CustomerID,
		PreviousStatus: previous,
		NewStatus:      current,
		OccurredAt:     entry.CreatedAt,
	}
}
