package complaint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// stubSequencer 固定序列打桩
type stubSequencer struct {
	next int64
}

func (s *stubSequencer) NextComplaintSeq(ctx context.Context, year int) (int64, error) {
	s.next++
	return s.next, nil
}

// stubOrderFinder 只实现投诉创建需要的订单查询
type stubOrderFinder struct {
	order.Repository
	orders map[string]*order.Order
}

func (s *stubOrderFinder) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	o, ok := s.orders[orderNo]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func newCreateUC(repo *stubComplaintRepo, orders map[string]*order.Order, pub *capturePublisher) *CreateComplaintUseCase {
	return NewCreateComplaintUseCase(repo, &stubOrderFinder{orders: orders}, &stubSequencer{}, stubTx{}, pub)
}

func TestCreateComplaint_Success(t *testing.T) {
	repo := newStubComplaintRepo()
	pub := &capturePublisher{}
	uc := newCreateUC(repo, nil, pub)

	c, err := uc.Execute(context.Background(), CreateComplaintRequest{
		CustomerID:  100,
		Category:    complaint.CategoryProductQuality,
		Priority:    complaint.PriorityMedium,
		Subject:     "商品与描述不符",
		Description: "页面写的是陶瓷实际收到的是塑料",
	}, customerActor)

	require.NoError(t, err)
	assert.True(t, complaint.ValidComplaintNo(c.ComplaintNo), "投诉单号格式不合法: %s", c.ComplaintNo)
	assert.Equal(t, complaint.FormatComplaintNo(time.Now().Year(), 1), c.ComplaintNo)
	assert.Equal(t, complaint.ComplaintStatusOpen, c.Status)

	// 创建历史与事件
	require.Len(t, repo.histories, 1)
	assert.Equal(t, complaint.ActionCreated, repo.histories[0].Action)
	require.Len(t, pub.complaintEvents, 1)
}

func TestCreateComplaint_LinkedOrderMustBelongToCustomer(t *testing.T) {
	o, _ := order.NewOrder("ORD-2026-0000009", 999, 999, []order.OrderItem{
		{ProductID: 1, SKU: "SKU-1", Quantity: 1, UnitPrice: 100},
	}, 0, "北京市朝阳区")

	repo := newStubComplaintRepo()
	uc := newCreateUC(repo, map[string]*order.Order{o.OrderNo: o}, &capturePublisher{})

	// 客户100试图关联客户999的订单
	_, err := uc.Execute(context.Background(), CreateComplaintRequest{
		CustomerID:  100,
		Category:    complaint.CategoryDeliveryIssue,
		Priority:    complaint.PriorityLow,
		Subject:     "物流太慢",
		Description: "关联了一个不属于我的订单",
		OrderNo:     "ORD-2026-0000009",
	}, customerActor)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateComplaint_CustomerCannotComplainForOthers(t *testing.T) {
	repo := newStubComplaintRepo()
	uc := newCreateUC(repo, nil, &capturePublisher{})

	_, err := uc.Execute(context.Background(), CreateComplaintRequest{
		CustomerID:  999, // 不是自己
		Category:    complaint.CategoryOther,
		Priority:    complaint.PriorityLow,
		Subject:     "替别人投诉",
		Description: "客户只能以自己的名义投诉",
	}, customerActor)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
