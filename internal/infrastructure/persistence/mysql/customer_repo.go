package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/tradeops/internal/domain/customer"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// customerRepository 客户画像仓储实现(MySQL)
// 教学要点:
// 1. 画像是物化视图,写入语义是整行覆盖而非增量更新
// 2. 用INSERT ... ON DUPLICATE KEY UPDATE一条语句完成Upsert,
//    避免SELECT再INSERT/UPDATE的竞态
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户画像仓储
func NewCustomerRepository(db *gorm.DB) customer.Repository {
	return &customerRepository{db: db}
}

// Upsert 整行覆盖写入
// customer_id唯一索引冲突时更新全部统计列
func (r *customerRepository) Upsert(ctx context.Context, agg *customer.CustomerAggregate) error {
	model := toAggregateModel(agg)

	db := r.getDB(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_orders",
			"total_order_value",
			"total_complaints",
			"open_complaints",
			"last_order_date",
			"last_complaint_date",
			"reconciled_at",
			"updated_at",
		}),
	}).Create(model).Error

	if err != nil {
		return apperrors.Wrap(err, "写入客户画像失败")
	}
	return nil
}

// FindByCustomerID 查询客户画像
func (r *customerRepository) FindByCustomerID(ctx context.Context, customerID uint) (*customer.CustomerAggregate, error) {
	var model CustomerAggregateModel
	db := r.getDB(ctx)
	err := db.Where("customer_id = ?", customerID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "查询客户画像失败")
	}

	return toAggregateEntity(&model), nil
}

// ListCustomerIDs 画像表中的全部客户ID
func (r *customerRepository) ListCustomerIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	db := r.getDB(ctx)
	err := db.Model(&CustomerAggregateModel{}).Pluck("customer_id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询客户ID列表失败")
	}
	return ids, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toAggregateModel(agg *customer.CustomerAggregate) *CustomerAggregateModel {
	return &CustomerAggregateModel{
		ID:                agg.ID,
		CustomerID:        agg.CustomerID,
		TotalOrders:       agg.TotalOrders,
		TotalOrderValue:   agg.TotalOrderValue,
		TotalComplaints:   agg.TotalComplaints,
		OpenComplaints:    agg.OpenComplaints,
		LastOrderDate:     agg.LastOrderDate,
		LastComplaintDate: agg.LastComplaintDate,
		ReconciledAt:      agg.ReconciledAt,
		CreatedAt:         agg.CreatedAt,
		UpdatedAt:         agg.UpdatedAt,
	}
}

func toAggregateEntity(model *CustomerAggregateModel) *customer.CustomerAggregate {
	return &customer.CustomerAggregate{
		ID:                model.ID,
		CustomerID:        model.CustomerID,
		TotalOrders:       model.TotalOrders,
		TotalOrderValue:   model.TotalOrderValue,
		TotalComplaints:   model.TotalComplaints,
		OpenComplaints:    model.OpenComplaints,
		LastOrderDate:     model.LastOrderDate,
		LastComplaintDate: model.LastComplaintDate,
		ReconciledAt:      model.ReconciledAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *customerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
