package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
)

func orderAt(status order.OrderStatus, total int64, placedAt time.Time) *order.Order {
	return &order.Order{
		CustomerID: 42,
		Status:     status,
		Total:      total,
		OrderDate:  placedAt,
	}
}

func complaintAt(status complaint.ComplaintStatus, createdAt time.Time) *complaint.Complaint {
	return &complaint.Complaint{
		CustomerID: 42,
		Status:     status,
		CreatedAt:  createdAt,
	}
}

func TestRecompute(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := base.AddDate(0, 0, 30)

	orders := []*order.Order{
		// 100.00 + 250.50 + 49.99 = 400.49元 → 40049分
		orderAt(order.OrderStatusDelivered, 10000, base),
		orderAt(order.OrderStatusShipped, 25050, base.AddDate(0, 0, 1)),
		orderAt(order.OrderStatusPlaced, 4999, base.AddDate(0, 0, 2)),
		// 已取消订单不计数不计额,下单时间也不参与"最近下单"
		orderAt(order.OrderStatusCancelled, 50000, base.AddDate(0, 0, 10)),
	}
	complaints := []*complaint.Complaint{
		complaintAt(complaint.ComplaintStatusOpen, base),
		complaintAt(complaint.ComplaintStatusInProgress, base.AddDate(0, 0, 3)),
		complaintAt(complaint.ComplaintStatusReopened, base.AddDate(0, 0, 5)),
		complaintAt(complaint.ComplaintStatusResolved, base.AddDate(0, 0, 6)),
		complaintAt(complaint.ComplaintStatusClosed, base.AddDate(0, 0, 7)),
	}

	agg := Recompute(42, orders, complaints, now)

	assert.Equal(t, uint(42), agg.CustomerID)
	assert.Equal(t, 3, agg.TotalOrders)
	assert.Equal(t, int64(40049), agg.TotalOrderValue)
	assert.Equal(t, 5, agg.TotalComplaints, "投诉总数不分状态")
	assert.Equal(t, 3, agg.OpenComplaints, "Open/InProgress/Reopened计入,Resolved/Closed不计")

	require.NotNil(t, agg.LastOrderDate)
	assert.Equal(t, base.AddDate(0, 0, 2), *agg.LastOrderDate, "已取消订单不参与最近下单")
	require.NotNil(t, agg.LastComplaintDate)
	assert.Equal(t, base.AddDate(0, 0, 7), *agg.LastComplaintDate)
	assert.Equal(t, now, agg.ReconciledAt)
}

// TestRecompute_Idempotent 同样的输入重复重算结果一致(对账幂等)
func TestRecompute_Idempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := base.AddDate(0, 1, 0)
	orders := []*order.Order{
		orderAt(order.OrderStatusDelivered, 12345, base),
	}
	complaints := []*complaint.Complaint{
		complaintAt(complaint.ComplaintStatusOpen, base),
	}

	first := Recompute(42, orders, complaints, now)
	second := Recompute(42, orders, complaints, now)
	assert.Equal(t, first, second)
}

func TestRecompute_Empty(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	agg := Recompute(42, nil, nil, now)

	assert.Equal(t, 0, agg.TotalOrders)
	assert.Equal(t, int64(0), agg.TotalOrderValue)
	assert.Equal(t, 0, agg.TotalComplaints)
	assert.Equal(t, 0, agg.OpenComplaints)
	assert.Nil(t, agg.LastOrderDate)
	assert.Nil(t, agg.LastComplaintDate)
}

// TestRecompute_AllCancelled 全部订单已取消:计数归零,最近下单也为空
func TestRecompute_AllCancelled(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []*order.Order{
		orderAt(order.OrderStatusCancelled, 10000, base),
		orderAt(order.OrderStatusCancelled, 20000, base.AddDate(0, 0, 1)),
	}

	agg := Recompute(42, orders, nil, base.AddDate(0, 0, 2))

	assert.Equal(t, 0, agg.TotalOrders)
	assert.Equal(t, int64(0), agg.TotalOrderValue)
	assert.Nil(t, agg.LastOrderDate, "已取消订单不参与最近下单")
}

// TestRecompute_LastOrderDateExcludesCancelled 晚于有效订单的取消单不抬高最近下单时间
func TestRecompute_LastOrderDateExcludesCancelled(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []*order.Order{
		orderAt(order.OrderStatusDelivered, 10000, base),
		orderAt(order.OrderStatusCancelled, 50000, base.AddDate(0, 0, 5)),
	}

	agg := Recompute(42, orders, nil, base.AddDate(0, 0, 6))

	require.NotNil(t, agg.LastOrderDate)
	assert.Equal(t, base, *agg.LastOrderDate)
}

// TestRecompute_ReturnsStillCount 退货相关状态仍计入有效订单
func TestRecompute_ReturnsStillCount(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []*order.Order{
		orderAt(order.OrderStatusReturnRequested, 5000, base),
		orderAt(order.OrderStatusReturned, 7000, base.AddDate(0, 0, 1)),
	}

	agg := Recompute(42, orders, nil, base.AddDate(0, 0, 2))

	assert.Equal(t, 2, agg.TotalOrders)
	assert.Equal(t, int64(12000), agg.TotalOrderValue)
}
