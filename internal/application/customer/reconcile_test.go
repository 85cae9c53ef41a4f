package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/customer"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	m.Run()
}

// stubOrderSource 订单源库打桩(只实现对账用到的方法)
type stubOrderSource struct {
	order.Repository
	byCustomer  map[uint][]*order.Order
	customerIDs []uint
	err         error
}

func (s *stubOrderSource) FindAllByCustomerID(ctx context.Context, customerID uint) ([]*order.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byCustomer[customerID], nil
}

func (s *stubOrderSource) ListCustomerIDs(ctx context.Context) ([]uint, error) {
	return s.customerIDs, nil
}

// stubComplaintSource 投诉源库打桩
type stubComplaintSource struct {
	complaint.Repository
	byCustomer  map[uint][]*complaint.Complaint
	customerIDs []uint
	err         error
}

func (s *stubComplaintSource) FindAllByCustomerID(ctx context.Context, customerID uint) ([]*complaint.Complaint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byCustomer[customerID], nil
}

func (s *stubComplaintSource) ListCustomerIDs(ctx context.Context) ([]uint, error) {
	return s.customerIDs, nil
}

// stubAggregateRepo 画像库打桩
type stubAggregateRepo struct {
	upserts []*customer.CustomerAggregate
}

func (s *stubAggregateRepo) Upsert(ctx context.Context, agg *customer.CustomerAggregate) error {
	s.upserts = append(s.upserts, agg)
	return nil
}

func (s *stubAggregateRepo) FindByCustomerID(ctx context.Context, customerID uint) (*customer.CustomerAggregate, error) {
	for i := len(s.upserts) - 1; i >= 0; i-- {
		if s.upserts[i].CustomerID == customerID {
			return s.upserts[i], nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

func (s *stubAggregateRepo) ListCustomerIDs(ctx context.Context) ([]uint, error) { return nil, nil }

func makeOrder(customerID uint, status order.OrderStatus, total int64, orderDate time.Time) *order.Order {
	return &order.Order{
		CustomerID: customerID,
		Status:     status,
		Total:      total,
		OrderDate:  orderDate,
	}
}

func makeComplaint(customerID uint, status complaint.ComplaintStatus, createdAt time.Time) *complaint.Complaint {
	return &complaint.Complaint{
		CustomerID: customerID,
		Status:     status,
		CreatedAt:  createdAt,
	}
}

func TestReconcile_Success(t *testing.T) {
	now := time.Now()
	orders := &stubOrderSource{byCustomer: map[uint][]*order.Order{
		100: {
			makeOrder(100, order.OrderStatusDelivered, 10000, now.Add(-48*time.Hour)),
			makeOrder(100, order.OrderStatusCancelled, 50000, now.Add(-1*time.Hour)), // 不计数不参与最近下单
		},
	}}
	complaints := &stubComplaintSource{byCustomer: map[uint][]*complaint.Complaint{
		100: {
			makeComplaint(100, complaint.ComplaintStatusOpen, now.Add(-2*time.Hour)),
			makeComplaint(100, complaint.ComplaintStatusClosed, now.Add(-30*time.Hour)),
		},
	}}
	aggRepo := &stubAggregateRepo{}

	uc := NewReconcileUseCase(orders, complaints, aggRepo, config.ReconcilerConfig{})
	err := uc.Reconcile(context.Background(), 100, TriggerManual)

	require.NoError(t, err)
	require.Len(t, aggRepo.upserts, 1)

	agg := aggRepo.upserts[0]
	assert.Equal(t, 1, agg.TotalOrders)
	assert.Equal(t, int64(10000), agg.TotalOrderValue)
	assert.Equal(t, 2, agg.TotalComplaints, "投诉总数不分状态")
	assert.Equal(t, 1, agg.OpenComplaints)
	// 最近下单时间不含已取消订单
	require.NotNil(t, agg.LastOrderDate)
	assert.WithinDuration(t, now.Add(-48*time.Hour), *agg.LastOrderDate, time.Second)
}

func TestReconcile_AbandonWholesaleOnSourceFailure(t *testing.T) {
	orders := &stubOrderSource{err: errors.New("connection refused")}
	complaints := &stubComplaintSource{}
	aggRepo := &stubAggregateRepo{}

	uc := NewReconcileUseCase(orders, complaints, aggRepo, config.ReconcilerConfig{})
	err := uc.Reconcile(context.Background(), 100, TriggerEvent)

	// 整体放弃:不写半新半旧的画像
	assert.ErrorIs(t, err, customer.ErrReconcileSourceUnavailable)
	assert.Empty(t, aggRepo.upserts)
}

func TestReconcile_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	orders := &stubOrderSource{err: errors.New("connection refused")}
	complaints := &stubComplaintSource{}
	aggRepo := &stubAggregateRepo{}

	uc := NewReconcileUseCase(orders, complaints, aggRepo, config.ReconcilerConfig{
		BreakerMaxFailures:  3,
		BreakerResetTimeout: time.Minute,
	})

	// 连续失败3次后熔断器打开,后续调用快速失败(不再访问源库)
	for i := 0; i < 5; i++ {
		err := uc.Reconcile(context.Background(), 100, TriggerSweep)
		assert.ErrorIs(t, err, customer.ErrReconcileSourceUnavailable)
	}
	assert.Empty(t, aggRepo.upserts)
}

func TestReconcileAll_UnionOfBothSources(t *testing.T) {
	now := time.Now()
	orders := &stubOrderSource{
		byCustomer: map[uint][]*order.Order{
			1: {makeOrder(1, order.OrderStatusPlaced, 100, now)},
			2: {makeOrder(2, order.OrderStatusPlaced, 200, now)},
		},
		customerIDs: []uint{1, 2},
	}
	// 客户3只投诉过、没下过单,同样需要画像
	complaints := &stubComplaintSource{
		byCustomer: map[uint][]*complaint.Complaint{
			2: {makeComplaint(2, complaint.ComplaintStatusOpen, now)},
			3: {makeComplaint(3, complaint.ComplaintStatusReopened, now)},
		},
		customerIDs: []uint{2, 3},
	}
	aggRepo := &stubAggregateRepo{}

	uc := NewReconcileUseCase(orders, complaints, aggRepo, config.ReconcilerConfig{})
	n, err := uc.ReconcileAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, aggRepo.upserts, 3)

	// 纯投诉客户的画像:订单侧全0
	agg, err := aggRepo.FindByCustomerID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.TotalOrders)
	assert.Equal(t, 1, agg.OpenComplaints)
	assert.Nil(t, agg.LastOrderDate)
}

func TestReconcile_Idempotent(t *testing.T) {
	now := time.Now()
	orders := &stubOrderSource{byCustomer: map[uint][]*order.Order{
		100: {makeOrder(100, order.OrderStatusDelivered, 10000, now)},
	}}
	complaints := &stubComplaintSource{}
	aggRepo := &stubAggregateRepo{}

	uc := NewReconcileUseCase(orders, complaints, aggRepo, config.ReconcilerConfig{})

	require.NoError(t, uc.Reconcile(context.Background(), 100, TriggerManual))
	require.NoError(t, uc.Reconcile(context.Background(), 100, TriggerManual))

	// 全量重算覆盖:两次结果一致
	require.Len(t, aggRepo.upserts, 2)
	assert.Equal(t, aggRepo.upserts[0].TotalOrders, aggRepo.upserts[1].TotalOrders)
	assert.Equal(t, aggRepo.upserts[0].TotalOrderValue, aggRepo.upserts[1].TotalOrderValue)
}
