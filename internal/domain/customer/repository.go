package customer

import (
	"context"
)

// Repository 客户画像仓储接口(依赖倒置原则)
type Repository interface {
	// Upsert 整行覆盖写入(customer_id唯一键,存在则更新)
	// 对账结果不做增量合并,直接以重算值覆盖
	Upsert(ctx context.Context, agg *CustomerAggregate) error

	// FindByCustomerID 查询客户画像
	FindByCustomerID(ctx context.Context, customerID uint) (*CustomerAggregate, error)

	// ListCustomerIDs 画像表中的全部客户ID
	ListCustomerIDs(ctx context.Context) ([]uint, error)
}
