package customer

import "time"

// CustomerAggregate 客户运营画像(跨服务派生聚合)
// 教学要点:
// 1. 这不是事实源:每个字段都可由订单库+投诉库全量重算得出,
//    本质上是一份物化视图,允许短暂落后于两侧事实
// 2. 因此更新语义是整行覆盖(Upsert),不做增量加减——增量在
//    事件丢失时会永久漂移,重算则天然自愈
type CustomerAggregate struct {
	ID         uint
	CustomerID uint

	// TotalOrders 有效订单数(不含已取消)
	TotalOrders int
	// TotalOrderValue 有效订单总额(分),口径与TotalOrders一致
	TotalOrderValue int64
	// TotalComplaints 投诉总数(不分状态)
	TotalComplaints int
	// OpenComplaints 未了结投诉数(Open/InProgress/Reopened)
	OpenComplaints int

	// LastOrderDate 最近下单时间,口径与TotalOrders一致(不含已取消)
	LastOrderDate *time.Time
	// LastComplaintDate 最近投诉时间
	LastComplaintDate *time.Time

	// ReconciledAt 本次对账完成时间
	ReconciledAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
