package customer

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
)

// Recompute 由两侧事实全量重算客户画像(纯函数)
// 教学要点:
// 1. 纯函数:不读库不写库,同样的输入永远得到同样的输出——
//    幂等性由此免费获得,重复对账无副作用
// 2. 口径集中定义在这里,应用层只负责取数和落库:
//    - TotalOrders / TotalOrderValue / LastOrderDate: 排除Cancelled,
//      其余全算(ReturnRequested/Returned仍计入——钱已经收过)
//    - TotalComplaints: 全部投诉,不分状态
//    - OpenComplaints: ComplaintStatus.IsOpen()
//    - LastComplaintDate: 全部投诉取最大CreatedAt
func Recompute(customerID uint, orders []*order.Order, complaints []*complaint.Complaint, now time.Time) *CustomerAggregate {
	agg := &CustomerAggregate{
		CustomerID:   customerID,
		ReconciledAt: now,
	}

	for _, o := range orders {
		if o.Status == order.OrderStatusCancelled {
			continue
		}
		agg.TotalOrders++
		agg.TotalOrderValue += o.Total
		if agg.LastOrderDate == nil || o.OrderDate.After(*agg.LastOrderDate) {
			d := o.OrderDate
			agg.LastOrderDate = &d
		}
	}

	for _, c := range complaints {
		agg.TotalComplaints++
		if c.Status.IsOpen() {
			agg.OpenComplaints++
		}
		if agg.LastComplaintDate == nil || c.CreatedAt.After(*agg.LastComplaintDate) {
			d := c.CreatedAt
			agg.LastComplaintDate = &d
		}
	}

	return agg
}
