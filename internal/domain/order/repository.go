package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 状态更新必须走CAS(compare-and-swap)语义,防止丢失更新:
//    两个互斥操作(如"取消"与"发货")并发时最多一个成功
// 3. 事务通过context传递(TxManager)
type Repository interface {
	// Create 创建订单(订单、明细必须在同一事务中落库)
	Create(ctx context.Context, o *Order) error

	// FindByOrderNo 根据业务单号查找订单(包含明细)
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatusCAS 以乐观并发守卫更新订单状态及派生字段
	// 实现必须执行 UPDATE ... WHERE order_no = ? AND status = <expected>:
	//   - 0行受影响且订单存在 → ErrConcurrentModification(调用方重读后重试)
	//   - 0行受影响且订单不存在 → ErrOrderNotFound
	UpdateStatusCAS(ctx context.Context, o *Order, expected OrderStatus) error

	// UpdateItemsReturn 落库明细行的退货标记(仅Return*三个字段)
	UpdateItemsReturn(ctx context.Context, o *Order) error

	// ListByCustomerID 分页查询客户订单
	ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*Order, int64, error)

	// FindAllByCustomerID 查询客户全部订单(聚合对账用,不分页)
	FindAllByCustomerID(ctx context.Context, customerID uint) ([]*Order, error)

	// ListCustomerIDs 订单库中出现过的全部客户ID(全量对账扫描用)
	ListCustomerIDs(ctx context.Context) ([]uint, error)

	// AppendHistory 追加一条审计历史(只增不改)
	// 必须与对应的状态变更处于同一事务:历史写失败则整体回滚,
	// 不允许出现"状态改了、审计丢了"的缺口
	AppendHistory(ctx context.Context, entry *HistoryEntry) error

	// ListHistory 按时间顺序返回订单全部历史
	ListHistory(ctx context.Context, orderNo string) ([]*HistoryEntry, error)
}
