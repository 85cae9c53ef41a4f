package order

import (
	"context"
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// Transactor 事务执行器
// 生产实现为mysql.TxManager;接口化便于用例层单测(无需真实数据库)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sequencer 订单号年度序列生成器(生产实现为redis.SequenceGenerator)
type Sequencer interface {
	NextOrderSeq(ctx context.Context, year int) (int64, error)
}

// CreateOrderUseCase 创建订单用例
// 设计说明：
// 1. 单号生成(Redis年度序列)在事务外——序列浪费无害,单号唯一性由
//    数据库UNIQUE索引兜底
// 2. 订单、明细、创建历史在同一事务落库:任何一步失败整体回滚
// 3. 事件发布在事务提交后,fire-and-forget(丢失由全量扫描自愈)
type CreateOrderUseCase struct {
	orderRepo order.Repository
	seq       Sequencer
	txManager Transactor
	publisher eventbus.Publisher
}

// NewCreateOrderUseCase 创建用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	seq Sequencer,
	txManager Transactor,
	publisher eventbus.Publisher,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		seq:       seq,
		txManager: txManager,
		publisher: publisher,
	}
}

// CreateOrderItemRequest 创建订单的明细行
type CreateOrderItemRequest struct {
	ProductID uint
	SKU       string
	Quantity  int
	UnitPrice int64 // 分
	Discount  int64 // 分
	Tax       int64 // 分
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	CustomerID      uint
	Items           []CreateOrderItemRequest
	ShippingCharges int64 // 分
	DeliveryAddress string
}

// Execute 执行创建订单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest, by actor.Actor) (*order.Order, error) {
	// 1. 生成业务单号(年度序列)
	year := time.Now().Year()
	seq, err := uc.seq.NextOrderSeq(ctx, year)
	if err != nil {
		return nil, order.ErrOrderNoGenerate
	}
	orderNo := order.FormatOrderNo(year, seq)

	// 2. 构造领域实体(金额按明细重算,不信任调用方汇总)
	items := make([]order.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.OrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Tax:       it.Tax,
		})
	}

	o, err := order.NewOrder(orderNo, req.CustomerID, by.UserID, items, req.ShippingCharges, req.DeliveryAddress)
	if err != nil {
		return nil, err
	}
	if err := o.CheckAmounts(); err != nil {
		return nil, err
	}

	// 3. 订单+创建历史同一事务落库
	entry := order.NewCreationEntry(o, by)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}
		return uc.orderRepo.AppendHistory(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// 4. 事务提交后发布事件并计数
	uc.publisher.PublishOrderStatusChanged(order.NewStatusChangedEvent(o, entry))
	metrics.OrdersCreatedTotal.Inc()

	return o, nil
}
