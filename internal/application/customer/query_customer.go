package customer

import (
	"context"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/customer"
)

// QueryCustomerUseCase 客户画像查询用例
type QueryCustomerUseCase struct {
	customerRepo customer.Repository
}

// NewQueryCustomerUseCase 创建查询用例
func NewQueryCustomerUseCase(customerRepo customer.Repository) *QueryCustomerUseCase {
	return &QueryCustomerUseCase{customerRepo: customerRepo}
}

// Get 查询客户画像
// 画像是物化视图,可能落后于事实库(最迟一个扫描周期追平);
// 客户只能查自己的画像
func (uc *QueryCustomerUseCase) Get(ctx context.Context, customerID uint, by actor.Actor) (*customer.CustomerAggregate, error) {
	if by.Role == actor.RoleCustomer && customerID != by.UserID {
		return nil, customer.ErrCustomerNotFound
	}
	return uc.customerRepo.FindByCustomerID(ctx, customerID)
}
