package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDesc = "商品收到时外包装破损,内部零件缺失,申请退货处理"

func deliveredOrder(t *testing.T) *Order {
	t.Helper()
	o := newTestOrder(t)
	advance(t, o, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered)
	return o
}

func TestRequestReturn_HappyPath(t *testing.T) {
	o := deliveredOrder(t)

	entry, err := o.RequestReturn([]ReturnItemRequest{
		{ItemID: 1, Quantity: 1, Reason: "破损"},
	}, "ProductQuality", validDesc, customer, 0)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusReturnRequested, o.Status)
	assert.True(t, o.Items[0].ReturnRequested)
	assert.Equal(t, 1, o.Items[0].ReturnQuantity)
	assert.False(t, o.Items[1].ReturnRequested, "未选中的明细不受影响")

	require.NotNil(t, o.Return)
	assert.Equal(t, "ProductQuality", o.Return.ReasonCategory)
	assert.Contains(t, entry.Notes, "SKU-A x1", "历史notes必须汇总退货明细")
}

func TestRequestReturn_OnlyFromDelivered(t *testing.T) {
	o := newTestOrder(t)
	_, err := o.RequestReturn([]ReturnItemRequest{{ItemID: 1, Quantity: 1}}, "Other", validDesc, customer, 0)
	assert.ErrorIs(t, err, ErrReturnNotDelivered)
}

func TestRequestReturn_Validation(t *testing.T) {
	o := deliveredOrder(t)

	_, err := o.RequestReturn(nil, "Other", validDesc, customer, 0)
	assert.ErrorIs(t, err, ErrReturnNoItems)

	_, err = o.RequestReturn([]ReturnItemRequest{{ItemID: 1, Quantity: 3}}, "Other", validDesc, customer, 0)
	assert.ErrorIs(t, err, ErrReturnQuantityInvalid, "退货数量不得超过购买数量")

	_, err = o.RequestReturn([]ReturnItemRequest{{ItemID: 99, Quantity: 1}}, "Other", validDesc, customer, 0)
	assert.ErrorIs(t, err, ErrReturnItemNotFound)

	_, err = o.RequestReturn([]ReturnItemRequest{{ItemID: 1, Quantity: 1}}, "Other", "太短", customer, 0)
	assert.ErrorIs(t, err, ErrReturnDescTooShort)

	// 校验失败不得留下半截标记
	assert.Equal(t, OrderStatusDelivered, o.Status)
	assert.False(t, o.Items[0].ReturnRequested)
	assert.Nil(t, o.Return)
}

// TestRequestReturn_Resolution 退货裁决:接受→Processing / 拒绝→Delivered / 完成→Returned
func TestRequestReturn_Resolution(t *testing.T) {
	accept := deliveredOrder(t)
	_, err := accept.RequestReturn([]ReturnItemRequest{{ItemID: 1, Quantity: 2}}, "DeliveryIssue", validDesc, customer, 0)
	require.NoError(t, err)
	_, err = accept.ApplyTransition(OrderStatusProcessing, admin, "退货通过,安排换货", "", "", 0)
	require.NoError(t, err)

	reject := deliveredOrder(t)
	_, err = reject.RequestReturn([]ReturnItemRequest{{ItemID: 2, Quantity: 1}}, "Other", validDesc, customer, 0)
	require.NoError(t, err)
	_, err = reject.ApplyTransition(OrderStatusDelivered, admin, "不符合退货条件", "", "", 0)
	require.NoError(t, err)
	require.NotNil(t, reject.Return, "被拒绝的退货申请仍保留ReturnInfo供审计")
	require.NotNil(t, reject.ActualDelivery, "回到Delivered不得清除已有送达时间")

	done := deliveredOrder(t)
	_, err = done.RequestReturn([]ReturnItemRequest{{ItemID: 1, Quantity: 1}}, "Other", validDesc, customer, 0)
	require.NoError(t, err)
	_, err = done.ApplyTransition(OrderStatusReturned, admin, "退货完成", "", "", 0)
	require.NoError(t, err)
	assert.True(t, done.Status.IsTerminal())
}
