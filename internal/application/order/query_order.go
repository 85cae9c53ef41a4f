package order

import (
	"context"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/order"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// QueryOrderUseCase 订单查询用例
// 可见性规则:员工可查任意订单,客户只能查自己的
type QueryOrderUseCase struct {
	orderRepo order.Repository
}

// NewQueryOrderUseCase 创建查询用例
func NewQueryOrderUseCase(orderRepo order.Repository) *QueryOrderUseCase {
	return &QueryOrderUseCase{orderRepo: orderRepo}
}

// Get 查询订单详情
func (uc *QueryOrderUseCase) Get(ctx context.Context, orderNo string, by actor.Actor) (*order.Order, error) {
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if by.Role == actor.RoleCustomer && !o.IsOwnedBy(by.UserID) {
		// 对客户隐藏他人订单的存在性
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

// List 分页查询客户订单
// 客户只能传自己的customerID,员工可查任意客户
func (uc *QueryOrderUseCase) List(ctx context.Context, customerID uint, page, pageSize int, by actor.Actor) ([]*order.Order, int64, error) {
	if by.Role == actor.RoleCustomer && customerID != by.UserID {
		return nil, 0, apperrors.ErrForbidden
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return uc.orderRepo.ListByCustomerID(ctx, customerID, page, pageSize)
}

// History 查询订单审计历史(时间升序)
func (uc *QueryOrderUseCase) History(ctx context.Context, orderNo string, by actor.Actor) ([]*order.HistoryEntry, error) {
	// 先走Get做归属校验,顺带确认订单存在
	if _, err := uc.Get(ctx, orderNo, by); err != nil {
		return nil, err
	}
	return uc.orderRepo.ListHistory(ctx, orderNo)
}
