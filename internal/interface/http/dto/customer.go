package dto

import "github.com/xiebiao/tradeops/internal/domain/customer"

// CustomerAggregateResponse HTTP客户运营画像响应
// 派生聚合:所有字段由订单库+投诉库全量重算得出,允许短暂落后
type CustomerAggregateResponse struct {
	CustomerID        uint   `json:"customer_id" example:"100"`
	TotalOrders       int    `json:"total_orders" example:"12"`              // 有效订单数(不含已取消)
	TotalOrderValue   int64  `json:"total_order_value" example:"358800"`     // 有效订单总额(分)
	TotalOrderYuan    string `json:"total_order_value_yuan" example:"3588.00"`
	TotalComplaints   int    `json:"total_complaints" example:"3"` // 投诉总数(不分状态)
	OpenComplaints    int    `json:"open_complaints" example:"1"`  // 未了结投诉数
	LastOrderDate     string `json:"last_order_date,omitempty" example:"2026-01-15 10:30:00"` // 最近下单时间(不含已取消)
	LastComplaintDate string `json:"last_complaint_date,omitempty"`
	ReconciledAt      string `json:"reconciled_at" example:"2026-01-15 10:35:00"` // 本次对账完成时间
}

// FromCustomerAggregate 将客户画像转换为HTTP响应
func FromCustomerAggregate(agg *customer.CustomerAggregate) *CustomerAggregateResponse {
	return &CustomerAggregateResponse{
		CustomerID:        agg.CustomerID,
		TotalOrders:       agg.TotalOrders,
		TotalOrderValue:   agg.TotalOrderValue,
		TotalOrderYuan:    FormatPriceYuan(agg.TotalOrderValue),
		TotalComplaints:   agg.TotalComplaints,
		OpenComplaints:    agg.OpenComplaints,
		LastOrderDate:     formatTimePtr(agg.LastOrderDate),
		LastComplaintDate: formatTimePtr(agg.LastComplaintDate),
		ReconciledAt:      formatTime(agg.ReconciledAt),
	}
}

// ReconcileResponse HTTP手动触发对账响应
type ReconcileResponse struct {
	CustomerID uint   `json:"customer_id,omitempty" example:"100"`
	Reconciled int    `json:"reconciled" example:"1"` // 本次重算的客户数
	Trigger    string `json:"trigger" example:"manual"`
}
