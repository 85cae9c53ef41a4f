package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

var (
	admin    = actor.Actor{UserID: 1, Name: "运营", Role: actor.RoleAdmin}
	customer = actor.Actor{UserID: 100, Name: "客户", Role: actor.RoleCustomer}
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("ORD-2026-0000001", 100, 100, []OrderItem{
		{ID: 1, ProductID: 11, SKU: "SKU-A", Quantity: 2, UnitPrice: 5000},
		{ID: 2, ProductID: 12, SKU: "SKU-B", Quantity: 1, UnitPrice: 9900, Tax: 500},
	}, 1000, "北京市海淀区xx路1号")
	require.NoError(t, err)
	return o
}

// advance 辅助:按合法路径推进订单状态
func advance(t *testing.T, o *Order, path ...OrderStatus) {
	t.Helper()
	for _, target := range path {
		tracking := ""
		if target == OrderStatusShipped {
			tracking = "TRK1"
		}
		_, err := o.ApplyTransition(target, admin, "", "", tracking, 0)
		require.NoError(t, err, "推进到%s失败", target)
	}
}

func TestNewOrder_Amounts(t *testing.T) {
	o := newTestOrder(t)

	// Subtotal = 2*5000 + 1*9900 = 19900, Tax = 500, Shipping = 1000
	assert.Equal(t, int64(19900), o.Subtotal)
	assert.Equal(t, int64(500), o.Tax)
	assert.Equal(t, int64(21400), o.Total)
	assert.NoError(t, o.CheckAmounts())

	assert.Equal(t, OrderStatusPlaced, o.Status)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, o.OrderDate.AddDate(0, 0, 7), *o.EstimatedDelivery)
}

func TestNewOrder_EmptyItems(t *testing.T) {
	_, err := NewOrder("ORD-2026-0000002", 1, 1, nil, 0, "")
	assert.ErrorIs(t, err, ErrInvalidOrderItems)
}

func TestCheckAmounts_Tolerance(t *testing.T) {
	o := newTestOrder(t)
	o.Total++ // 1分以内的偏差可接受
	assert.NoError(t, o.CheckAmounts())
	o.Total++
	assert.ErrorIs(t, o.CheckAmounts(), ErrAmountMismatch)
}

func TestApplyTransition_HappyPath(t *testing.T) {
	o := newTestOrder(t)

	entry, err := o.ApplyTransition(OrderStatusProcessing, admin, "", "", "", 0)
	require.NoError(t, err)
	require.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, OrderStatusPlaced, *entry.PreviousStatus)
	assert.Equal(t, OrderStatusProcessing, entry.NewStatus)
	assert.Equal(t, actor.RoleAdmin, entry.ChangedByRole)

	entry, err = o.ApplyTransition(OrderStatusShipped, admin, "", "", "TRK1", 0)
	require.NoError(t, err)
	assert.Equal(t, "TRK1", o.TrackingNumber)
	assert.Equal(t, "TRK1", entry.TrackingNumber)

	require.Nil(t, o.ActualDelivery)
	_, err = o.ApplyTransition(OrderStatusDelivered, admin, "", "", "", 0)
	require.NoError(t, err)
	require.NotNil(t, o.ActualDelivery, "进入Delivered必须设置实际送达时间")
}

// TestApplyTransition_CancelAfterShip 发货后取消必须失败(不可重试)
func TestApplyTransition_CancelAfterShip(t *testing.T) {
	o := newTestOrder(t)
	advance(t, o, OrderStatusProcessing, OrderStatusShipped)

	_, err := o.ApplyTransition(OrderStatusCancelled, admin, "商品缺货无法履约,取消订单", "OutOfStock", "", 0)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, OrderStatusShipped, o.Status, "失败的流转不得改变状态")
}

func TestApplyTransition_TerminalStates(t *testing.T) {
	// 已取消的订单不接受任何流转
	o := newTestOrder(t)
	advance(t, o, OrderStatusProcessing)
	_, err := o.ApplyTransition(OrderStatusCancelled, customer, "下错地址了,重新下单更方便", "CustomerRequest", "", 0)
	require.NoError(t, err)

	for _, target := range []OrderStatus{
		OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusReturnRequested, OrderStatusReturned,
	} {
		_, err := o.ApplyTransition(target, admin, "", "", "TRK", 0)
		assert.ErrorIs(t, err, ErrIllegalTransition, "Cancelled→%s 不应被允许", target)
	}
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusReturned.IsTerminal())
}

func TestApplyTransition_ShippedRequiresTracking(t *testing.T) {
	o := newTestOrder(t)
	advance(t, o, OrderStatusProcessing)

	_, err := o.ApplyTransition(OrderStatusShipped, admin, "", "", "", 0)
	assert.ErrorIs(t, err, ErrMissingTrackingNumber)
	assert.Equal(t, OrderStatusProcessing, o.Status)
}

func TestApplyTransition_CancelReasonMinLen(t *testing.T) {
	o := newTestOrder(t)

	_, err := o.ApplyTransition(OrderStatusCancelled, customer, "不想要了", "CustomerRequest", "", 0)
	assert.ErrorIs(t, err, ErrMissingReason, "默认最小长度10,短理由应被拒绝")

	// 配置覆盖:最小长度4时同样的理由可以通过
	_, err = o.ApplyTransition(OrderStatusCancelled, customer, "不想要了", "CustomerRequest", "", 4)
	require.NoError(t, err)

	require.NotNil(t, o.Cancellation)
	assert.Equal(t, customer.UserID, o.Cancellation.CancelledBy)
	assert.Equal(t, "CustomerRequest", o.Cancellation.ReasonCategory)
	assert.Nil(t, o.EstimatedDelivery, "取消时必须清空预计送达时间")
}

func TestApplyTransition_RoleRules(t *testing.T) {
	o := newTestOrder(t)

	// 客户不能执行履约动作
	_, err := o.ApplyTransition(OrderStatusProcessing, customer, "", "", "", 0)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	// 管理员可以
	_, err = o.ApplyTransition(OrderStatusProcessing, admin, "", "", "", 0)
	assert.NoError(t, err)
}

// TestTransitionTable_NoCrossTerminalPath 穷举校验:任何序列都无法从Cancelled到Delivered(或反向)
// 送达标记单调(进过Delivered就永远为真),穷举在(状态,送达标记)上进行,
// 与CanTransitionTo的跨终态守卫保持同一条规则
func TestTransitionTable_NoCrossTerminalPath(t *testing.T) {
	type node struct {
		status    OrderStatus
		delivered bool
	}
	reachable := func(from node) map[OrderStatus]bool {
		seen := map[node]bool{}
		reached := map[OrderStatus]bool{}
		queue := []node{from}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			for _, next := range transitions[s.status] {
				if next == OrderStatusCancelled && s.delivered {
					continue // 送达过的订单不可取消
				}
				n := node{status: next, delivered: s.delivered || next == OrderStatusDelivered}
				reached[next] = true
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		return reached
	}

	assert.False(t, reachable(node{status: OrderStatusCancelled})[OrderStatusDelivered])
	assert.False(t, reachable(node{status: OrderStatusDelivered, delivered: true})[OrderStatusCancelled])
	assert.False(t, reachable(node{status: OrderStatusReturned})[OrderStatusPlaced])
	// Returned只能经由退货申请到达
	assert.True(t, reachable(node{status: OrderStatusDelivered, delivered: true})[OrderStatusReturned])
	// 未送达过的订单从Placed仍可到达Cancelled
	assert.True(t, reachable(node{status: OrderStatusPlaced})[OrderStatusCancelled])
}

// TestApplyTransition_NoCancelAfterDelivery 退货被接受回到Processing后依然不可取消
// 路径: Delivered→ReturnRequested→Processing→Cancelled 必须被拒绝
func TestApplyTransition_NoCancelAfterDelivery(t *testing.T) {
	o := newTestOrder(t)
	advance(t, o, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered)
	advance(t, o, OrderStatusReturnRequested, OrderStatusProcessing)

	_, err := o.ApplyTransition(OrderStatusCancelled, admin, "客户要求取消这笔换货订单", "CustomerRequest", "", 0)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, OrderStatusProcessing, o.Status, "失败的流转不得改变状态")
	require.NotNil(t, o.ActualDelivery, "送达时间保留,取消边对该订单永久关闭")
}

func TestOrderNo(t *testing.T) {
	no := FormatOrderNo(2026, 42)
	assert.Equal(t, "ORD-2026-0000042", no)
	assert.True(t, ValidOrderNo(no))
	assert.False(t, ValidOrderNo("ORD-2026-000042"), "6位序列属于历史遗留格式,统一拒绝")
	assert.False(t, ValidOrderNo("CMP-2026-0000042"))
}
