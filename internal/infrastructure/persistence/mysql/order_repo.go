package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/order"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
// 4. 状态更新走CAS:WHERE带上期望状态,0行受影响即并发冲突
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 教学要点:
// 1. GORM会自动保存关联的Items(通过foreignKey)
// 2. 创建记录的审计历史由应用层在同一事务中AppendHistory
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			// 单号冲突理论上只在序列发生回绕时出现
			return apperrors.Wrap(err, "订单号冲突")
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}

	return nil
}

// FindByOrderNo 根据业务单号查找订单
// 教学要点:使用Preload预加载Items,避免N+1查询
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatusCAS 乐观并发更新
// 教学要点:这是整个并发模型的落点
// 1. WHERE order_no = ? AND status = <expected>,状态列就是版本号
// 2. RowsAffected == 0 时再查一次区分"被抢先"与"不存在"
// 3. 两个互斥操作并发时,数据库保证最多一个UPDATE命中
func (r *orderRepository) UpdateStatusCAS(ctx context.Context, o *order.Order, expected order.OrderStatus) error {
	db := r.getDB(ctx)

	updates := map[string]interface{}{
		"status":             int(o.Status),
		"tracking_number":    o.TrackingNumber,
		"estimated_delivery": o.EstimatedDelivery,
		"actual_delivery":    o.ActualDelivery,
		"updated_at":         o.UpdatedAt,
	}
	if o.Cancellation != nil {
		updates["cancel_reason"] = o.Cancellation.Reason
		updates["cancel_category"] = o.Cancellation.ReasonCategory
		updates["cancelled_by"] = o.Cancellation.CancelledBy
		updates["cancelled_at"] = o.Cancellation.CancelledAt
	}
	if o.Return != nil {
		updates["return_category"] = o.Return.ReasonCategory
		updates["return_description"] = o.Return.Description
		updates["return_requested_by"] = o.Return.RequestedBy
		updates["return_requested_at"] = o.Return.RequestedAt
	}

	result := db.Model(&OrderModel{}).
		Where("order_no = ? AND status = ?", o.OrderNo, int(expected)).
		Updates(updates)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}

	if result.RowsAffected == 0 {
		// 区分并发冲突与订单不存在
		var count int64
		if err := db.Model(&OrderModel{}).Where("order_no = ?", o.OrderNo).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrConcurrentModification
	}

	return nil
}

// UpdateItemsReturn 落库明细行的退货标记
// 只更新Return*三个字段,明细其余部分下单后不可变
func (r *orderRepository) UpdateItemsReturn(ctx context.Context, o *order.Order) error {
	db := r.getDB(ctx)
	for i := range o.Items {
		item := &o.Items[i]
		if !item.ReturnRequested {
			continue
		}
		err := db.Model(&OrderItemModel{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"return_requested": item.ReturnRequested,
			"return_quantity":  item.ReturnQuantity,
			"return_reason":    item.ReturnReason,
		}).Error
		if err != nil {
			return apperrors.Wrap(err, "更新退货标记失败")
		}
	}
	return nil
}

// ListByCustomerID 分页查询客户订单
func (r *orderRepository) ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&OrderModel{}).Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("order_date DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// FindAllByCustomerID 查询客户全部订单(聚合对账用)
// 对账只需要状态、金额、下单时间,不Preload明细
func (r *orderRepository) FindAllByCustomerID(ctx context.Context, customerID uint) ([]*order.Order, error) {
	var models []OrderModel
	db := r.getDB(ctx)
	err := db.Where("customer_id = ?", customerID).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询客户订单失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, nil
}

// ListCustomerIDs 订单库中出现过的全部客户ID
func (r *orderRepository) ListCustomerIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	db := r.getDB(ctx)
	err := db.Model(&OrderModel{}).Distinct("customer_id").Pluck("customer_id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询客户ID列表失败")
	}
	return ids, nil
}

// AppendHistory 追加审计历史
// 教学要点:Append-Only,这个仓储对order_histories表只有INSERT和SELECT
func (r *orderRepository) AppendHistory(ctx context.Context, entry *order.HistoryEntry) error {
	model := toOrderHistoryModel(entry)
	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入订单历史失败")
	}
	entry.ID = model.ID
	return nil
}

// ListHistory 按时间顺序返回订单全部历史
func (r *orderRepository) ListHistory(ctx context.Context, orderNo string) ([]*order.HistoryEntry, error) {
	var models []OrderHistoryModel
	db := r.getDB(ctx)
	err := db.Where("order_no = ?", orderNo).Order("created_at ASC, id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单历史失败")
	}

	entries := make([]*order.HistoryEntry, len(models))
	for i := range models {
		entries[i] = toOrderHistoryEntity(&models[i])
	}
	return entries, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Discount:        item.Discount,
			Tax:             item.Tax,
			FinalPrice:      item.FinalPrice,
			ReturnRequested: item.ReturnRequested,
			ReturnQuantity:  item.ReturnQuantity,
			ReturnReason:    item.ReturnReason,
		}
	}

	model := &OrderModel{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		CustomerID:        o.CustomerID,
		UserID:            o.UserID,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Tax:               o.Tax,
		ShippingCharges:   o.ShippingCharges,
		Total:             o.Total,
		Status:            int(o.Status),
		DeliveryAddress:   o.DeliveryAddress,
		TrackingNumber:    o.TrackingNumber,
		OrderDate:         o.OrderDate,
		EstimatedDelivery: o.EstimatedDelivery,
		ActualDelivery:    o.ActualDelivery,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.Cancellation != nil {
		model.CancelReason = o.Cancellation.Reason
		model.CancelCategory = o.Cancellation.ReasonCategory
		model.CancelledBy = o.Cancellation.CancelledBy
		t := o.Cancellation.CancelledAt
		model.CancelledAt = &t
	}
	if o.Return != nil {
		model.ReturnCategory = o.Return.ReasonCategory
		model.ReturnDescription = o.Return.Description
		model.ReturnRequestedBy = o.Return.RequestedBy
		t := o.Return.RequestedAt
		model.ReturnRequestedAt = &t
	}
	return model
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Discount:        item.Discount,
			Tax:             item.Tax,
			FinalPrice:      item.FinalPrice,
			ReturnRequested: item.ReturnRequested,
			ReturnQuantity:  item.ReturnQuantity,
			ReturnReason:    item.ReturnReason,
		}
	}

	o := &order.Order{
		ID:                model.ID,
		OrderNo:           model.OrderNo,
		CustomerID:        model.CustomerID,
		UserID:            model.UserID,
		Subtotal:          model.Subtotal,
		Discount:          model.Discount,
		Tax:               model.Tax,
		ShippingCharges:   model.ShippingCharges,
		Total:             model.Total,
		Status:            order.OrderStatus(model.Status),
		DeliveryAddress:   model.DeliveryAddress,
		TrackingNumber:    model.TrackingNumber,
		OrderDate:         model.OrderDate,
		EstimatedDelivery: model.EstimatedDelivery,
		ActualDelivery:    model.ActualDelivery,
		Items:             items,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.CancelledAt != nil {
		o.Cancellation = &order.CancellationInfo{
			Reason:         model.CancelReason,
			ReasonCategory: model.CancelCategory,
			CancelledBy:    model.CancelledBy,
			CancelledAt:    *model.CancelledAt,
		}
	}
	if model.ReturnRequestedAt != nil {
		o.Return = &order.ReturnInfo{
			ReasonCategory: model.ReturnCategory,
			Description:    model.ReturnDescription,
			RequestedBy:    model.ReturnRequestedBy,
			RequestedAt:    *model.ReturnRequestedAt,
		}
	}
	return o
}

// toOrderHistoryModel 历史实体 → GORM模型
func toOrderHistoryModel(e *order.HistoryEntry) *OrderHistoryModel {
	model := &OrderHistoryModel{
		ID:             e.ID,
		OrderNo:        e.OrderNo,
		NewStatus:      int(e.NewStatus),
		ChangedBy:      e.ChangedBy,
		ChangedByRole:  string(e.ChangedByRole),
		Notes:          e.Notes,
		TrackingNumber: e.TrackingNumber,
		CreatedAt:      e.CreatedAt,
	}
	if e.PreviousStatus != nil {
		prev := int(*e.PreviousStatus)
		model.PreviousStatus = &prev
	}
	return model
}

// toOrderHistoryEntity GORM模型 → 历史实体
func toOrderHistoryEntity(model *OrderHistoryModel) *order.HistoryEntry {
	entry := &order.HistoryEntry{
		ID:             model.ID,
		OrderNo:        model.OrderNo,
		NewStatus:      order.OrderStatus(model.NewStatus),
		ChangedBy:      model.ChangedBy,
		ChangedByRole:  actor.Role(model.ChangedByRole),
		Notes:          model.Notes,
		TrackingNumber: model.TrackingNumber,
		CreatedAt:      model.CreatedAt,
	}
	if model.PreviousStatus != nil {
		prev := order.OrderStatus(*model.PreviousStatus)
		entry.PreviousStatus = &prev
	}
	return entry
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
