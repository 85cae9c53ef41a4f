package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
)

// stubSequencer 固定序列打桩
type stubSequencer struct {
	next int64
}

func (s *stubSequencer) NextOrderSeq(ctx context.Context, year int) (int64, error) {
	s.next++
	return s.next, nil
}

func TestCreateOrder_Success(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &capturePublisher{}
	uc := NewCreateOrderUseCase(repo, &stubSequencer{}, stubTx{}, pub)

	o, err := uc.Execute(context.Background(), CreateOrderRequest{
		CustomerID: 100,
		Items: []CreateOrderItemRequest{
			{ProductID: 7, SKU: "SKU-1001", Quantity: 2, UnitPrice: 5000},
			{ProductID: 8, SKU: "SKU-2002", Quantity: 1, UnitPrice: 25050, Discount: 1000, Tax: 500},
		},
		ShippingCharges: 800,
		DeliveryAddress: "上海市浦东新区",
	}, customerActor)

	require.NoError(t, err)

	// 单号格式: ORD-{年份}-{7位序列}
	assert.True(t, order.ValidOrderNo(o.OrderNo), "订单号格式不合法: %s", o.OrderNo)
	assert.Equal(t, order.FormatOrderNo(time.Now().Year(), 1), o.OrderNo)

	// 金额按明细重算: 10000+25050 - 1000 + 500 + 800
	assert.Equal(t, int64(35050), o.Subtotal)
	assert.Equal(t, int64(35350), o.Total)
	assert.Equal(t, order.OrderStatusPlaced, o.Status)

	// 订单与创建历史同一事务落库
	require.Len(t, repo.histories, 1)
	assert.True(t, repo.histories[0].IsCreation())

	// 创建事件已发布
	require.Len(t, pub.orderEvents, 1)
	assert.Equal(t, order.OrderStatusPlaced, pub.orderEvents[0].NewStatus)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	repo := newStubOrderRepo()
	uc := NewCreateOrderUseCase(repo, &stubSequencer{}, stubTx{}, &capturePublisher{})

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		CustomerID:      100,
		DeliveryAddress: "上海市浦东新区",
	}, customerActor)

	assert.ErrorIs(t, err, order.ErrInvalidOrderItems)
}

func TestRequestReturn_Success(t *testing.T) {
	o := testOrder(order.OrderStatusDelivered)
	repo := newStubOrderRepo(o)
	pub := &capturePublisher{}
	uc := NewRequestReturnUseCase(repo, stubTx{}, pub, config.LifecycleConfig{})

	got, err := uc.Execute(context.Background(), ReturnRequest{
		OrderNo: o.OrderNo,
		Items: []order.ReturnItemRequest{
			{ItemID: 1, Quantity: 1, Reason: "屏幕有划痕"},
		},
		ReasonCategory: "Damaged",
		Description:    "收到时外包装完好但屏幕左上角有明显划痕，申请退货换新",
	}, customerActor)

	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusReturnRequested, got.Status)
	require.NotNil(t, got.Return)
	assert.True(t, got.Items[0].ReturnRequested)

	require.Len(t, repo.histories, 1)
	require.Len(t, pub.orderEvents, 1)
}

func TestRequestReturn_NotDelivered(t *testing.T) {
	o := testOrder(order.OrderStatusShipped)
	repo := newStubOrderRepo(o)
	uc := NewRequestReturnUseCase(repo, stubTx{}, &capturePublisher{}, config.LifecycleConfig{})

	_, err := uc.Execute(context.Background(), ReturnRequest{
		OrderNo: o.OrderNo,
		Items: []order.ReturnItemRequest{
			{ItemID: 1, Quantity: 1},
		},
		ReasonCategory: "Damaged",
		Description:    "还没收到货但我已经预感到它是坏的",
	}, customerActor)

	assert.ErrorIs(t, err, order.ErrReturnNotDelivered)
}

func TestRequestReturn_DescriptionTooShort(t *testing.T) {
	o := testOrder(order.OrderStatusDelivered)
	repo := newStubOrderRepo(o)
	uc := NewRequestReturnUseCase(repo, stubTx{}, &capturePublisher{}, config.LifecycleConfig{})

	_, err := uc.Execute(context.Background(), ReturnRequest{
		OrderNo: o.OrderNo,
		Items: []order.ReturnItemRequest{
			{ItemID: 1, Quantity: 1},
		},
		ReasonCategory: "Damaged",
		Description:    "坏了",
	}, customerActor)

	assert.ErrorIs(t, err, order.ErrReturnDescTooShort)
}
