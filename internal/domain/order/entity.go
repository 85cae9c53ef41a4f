package order

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// OrderStatus 订单状态
// 教学要点:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 定义为类型别名,便于添加方法
// 3. 合法流转由transitions表显式定义,杜绝散落各处的switch比较
type OrderStatus int

const (
	OrderStatusPlaced          OrderStatus = 1 // 已下单(初始状态)
	OrderStatusProcessing      OrderStatus = 2 // 处理中
	OrderStatusShipped         OrderStatus = 3 // 已发货
	OrderStatusDelivered       OrderStatus = 4 // 已送达
	OrderStatusCancelled       OrderStatus = 5 // 已取消(终态)
	OrderStatusReturnRequested OrderStatus = 6 // 退货申请中
	OrderStatusReturned        OrderStatus = 7 // 已退货(终态)
)

// String 实现Stringer接口(方便日志输出)
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPlaced:
		return "已下单"
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusDelivered:
		return "已送达"
	case OrderStatusCancelled:
		return "已取消"
	case OrderStatusReturnRequested:
		return "退货申请中"
	case OrderStatusReturned:
		return "已退货"
	default:
		return "未知状态"
	}
}

// Valid 是否为已定义的状态值
func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPlaced && s <= OrderStatusReturned
}

// IsTerminal 是否为终态(不再接受任何流转)
// 注意:Delivered不是严格终态,它还允许进入退货申请
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// transitions 订单状态转换表
// 教学要点:状态机设计,所有合法流转集中在一张表里
// 任何不在表中的流转一律返回ErrIllegalTransition(不可重试)
// 注意:Processing→Cancelled只对未送达过的订单开放,见CanTransitionTo的守卫
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	// 已送达的订单只能进入退货申请(不能取消)
	OrderStatusDelivered: {OrderStatusReturnRequested},
	// 退货裁决:接受→处理中(换货), 拒绝→回到已送达, 完成→已退货
	OrderStatusReturnRequested: {OrderStatusProcessing, OrderStatusDelivered, OrderStatusReturned},
	OrderStatusCancelled:       {},
	OrderStatusReturned:        {},
}

// transitionRoles 各目标状态允许的操作角色
// 规则来源:客户只能取消自己的订单或发起退货,履约动作仅限运营侧
var transitionRoles = map[OrderStatus][]actor.Role{
	OrderStatusProcessing:      {actor.RoleAdmin, actor.RoleSystem},
	OrderStatusShipped:         {actor.RoleAdmin, actor.RoleSystem},
	OrderStatusDelivered:       {actor.RoleAdmin, actor.RoleSystem},
	OrderStatusReturned:        {actor.RoleAdmin, actor.RoleSystem},
	OrderStatusCancelled:       {actor.RoleAdmin, actor.RoleCustomer, actor.RoleSystem},
	OrderStatusReturnRequested: {actor.RoleAdmin, actor.RoleCustomer, actor.RoleSystem},
}

const (
	// DefaultCancelReasonMinLen 取消理由最小长度(可由配置覆盖)
	DefaultCancelReasonMinLen = 10

	// EstimatedDeliveryDays 预计送达天数(下单时间+7天)
	EstimatedDeliveryDays = 7
)

// AmountTolerance 金额校验容差(分)
// 对应业务规则"totalAmount与各分项之和的偏差不超过0.01元"
const AmountTolerance = 1

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根,OrderItem是子实体,必须通过Order访问
// 2. OrderNo是业务主键(ORD-{年份}-{7位序列}),创建后不可变
// 3. 金额一律以"分"(int64)存储,避免浮点精度问题
// 4. 状态只能通过ApplyTransition/RequestReturn变更,订单永不删除
type Order struct {
	ID                uint
	OrderNo           string // 业务单号,全局唯一,创建后不可变
	CustomerID        uint   // 客户ID(弱引用,仅用于查询,不跨聚合持有对象)
	UserID            uint   // 下单账号ID(弱引用)
	Items             []OrderItem
	Subtotal          int64 // 商品小计(分)
	Discount          int64 // 优惠金额(分)
	Tax               int64 // 税费(分)
	ShippingCharges   int64 // 运费(分)
	Total             int64 // 应付总额(分), Total = Subtotal - Discount + Tax + Shipping
	Status            OrderStatus
	DeliveryAddress   string
	TrackingNumber    string            // 运单号(进入Shipped后必填)
	OrderDate         time.Time         // 下单时间,创建后不可变
	EstimatedDelivery *time.Time        // 预计送达(下单+7天,取消时清空)
	ActualDelivery    *time.Time        // 实际送达(仅在进入Delivered时设置)
	Cancellation      *CancellationInfo // 仅当Status==Cancelled时存在
	Return            *ReturnInfo       // 只要发起过退货就存在(含被拒绝的)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem 订单明细项
// 教学要点:
// 1. 不是独立聚合根,必须通过Order访问
// 2. UnitPrice记录"下单时的价格"(历史价格快照),不关联商品对象
// 3. 下单后明细集合不可变,唯一例外是退货流对Return*字段的标记
type OrderItem struct {
	ID              uint
	OrderID         uint
	ProductID       uint
	SKU             string
	Quantity        int
	UnitPrice       int64 // 下单时单价(分)
	Discount        int64 // 行优惠(分)
	Tax             int64 // 行税费(分)
	FinalPrice      int64 // 行小计(分) = UnitPrice*Quantity - Discount + Tax
	ReturnRequested bool
	ReturnQuantity  int // 0..Quantity
	ReturnReason    string
}

// CancellationInfo 取消信息(仅取消态存在)
// ReasonCategory是运营侧的归因标签(如CustomerRequest/OutOfStock),可为空
type CancellationInfo struct {
	Reason         string
	ReasonCategory string
	CancelledBy    uint
	CancelledAt    time.Time
}

// ReturnInfo 退货申请信息
// 历史字段只追加不清除:即使退货被拒绝回到Delivered,ReturnInfo仍保留
type ReturnInfo struct {
	ReasonCategory string
	Description    string
	RequestedBy    uint
	RequestedAt    time.Time
}

// NewOrder 创建新订单(工厂方法)
// 教学要点:
// 1. 工厂方法封装创建逻辑,保证实体的有效性
// 2. 单号由外部传入(Redis年度序列生成,见infrastructure层)
// 3. 初始状态为Placed,预计送达=下单时间+7天
// 4. 金额全部按明细重算,不信任调用方传入的汇总值
func NewOrder(orderNo string, customerID, userID uint, items []OrderItem, shippingCharges int64, deliveryAddress string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}

	var subtotal, discount, tax int64
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		line := items[i].UnitPrice * int64(items[i].Quantity)
		items[i].FinalPrice = line - items[i].Discount + items[i].Tax
		subtotal += line
		discount += items[i].Discount
		tax += items[i].Tax
	}

	now := time.Now()
	estimated := now.AddDate(0, 0, EstimatedDeliveryDays)
	return &Order{
		OrderNo:           orderNo,
		CustomerID:        customerID,
		UserID:            userID,
		Items:             items,
		Subtotal:          subtotal,
		Discount:          discount,
		Tax:               tax,
		ShippingCharges:   shippingCharges,
		Total:             subtotal - discount + tax + shippingCharges,
		Status:            OrderStatusPlaced,
		DeliveryAddress:   deliveryAddress,
		OrderDate:         now,
		EstimatedDelivery: &estimated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CheckAmounts 校验金额不变式
// Total必须等于 Subtotal - Discount + Tax + ShippingCharges(±1分容差)
func (o *Order) CheckAmounts() error {
	expected := o.Subtotal - o.Discount + o.Tax + o.ShippingCharges
	diff := o.Total - expected
	if diff < -AmountTolerance || diff > AmountTolerance {
		return ErrAmountMismatch
	}
	return nil
}

// CanTransitionTo 检查是否可以转换到目标状态
// 转换表之外还有一条跨终态守卫:送达过的订单(ActualDelivery非空)不可再
// 取消——退货被接受回到Processing后,取消边对它关闭,已送达与已取消互斥
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled && o.ActualDelivery != nil {
		return false
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// ApplyTransition 执行状态流转
// 教学要点:这是订单生命周期引擎的核心入口
// 1. 先查转换表(非法流转不可重试,调用方必须重新读取状态)
// 2. 再查角色表(客户不能替运营发货)
// 3. 校验载荷(发货必须有运单号,取消必须有足够长的理由)
// 4. 成功后维护派生字段(送达时间/取消信息),并返回一条审计历史
//
// 参数:
//   - reasonCategory: 取消归因标签,仅入Cancelled时落库,可为空
//   - reasonMinLen: 取消理由最小长度,传0使用默认值(10)
//
// 返回的HistoryEntry尚未持久化,由应用层与状态更新放在同一事务提交
func (o *Order) ApplyTransition(target OrderStatus, by actor.Actor, reason, reasonCategory, trackingNumber string, reasonMinLen int) (*HistoryEntry, error) {
	if !o.CanTransitionTo(target) {
		return nil, ErrIllegalTransition
	}

	if !roleAllowed(target, by.Role) {
		return nil, ErrRoleNotAllowed
	}

	if target == OrderStatusShipped && trackingNumber == "" {
		return nil, ErrMissingTrackingNumber
	}

	if target == OrderStatusCancelled {
		if reasonMinLen <= 0 {
			reasonMinLen = DefaultCancelReasonMinLen
		}
		if len([]rune(reason)) < reasonMinLen {
			return nil, ErrMissingReason
		}
	}

	now := time.Now()
	previous := o.Status
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case OrderStatusShipped:
		o.TrackingNumber = trackingNumber
	case OrderStatusDelivered:
		// 幂等:重复对账/查询不会清掉已有的送达时间
		if o.ActualDelivery == nil {
			t := now
			o.ActualDelivery = &t
		}
	case OrderStatusCancelled:
		o.EstimatedDelivery = nil
		o.Cancellation = &CancellationInfo{
			Reason:         reason,
			ReasonCategory: reasonCategory,
			CancelledBy:    by.UserID,
			CancelledAt:    now,
		}
	}

	return newTransitionEntry(o, previous, by, reason, trackingNumber, now), nil
}

// roleAllowed 目标状态是否允许该角色操作
func roleAllowed(target OrderStatus, role actor.Role) bool {
	allowed, exists := transitionRoles[target]
	if !exists {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// IsOwnedBy 检查订单是否属于指定客户
// 教学要点:权限校验,防止客户操作他人订单
func (o *Order) IsOwnedBy(customerID uint) bool {
	return o.CustomerID == customerID
}
