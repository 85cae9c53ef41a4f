package complaint

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// ComplaintStatus 投诉状态
// 教学要点:
// 1. Reopened是独立状态而非审计标签:重开后的投诉经updateStatus
//    回到Open/InProgress继续处理(业务决策见DESIGN.md)
// 2. Closed是唯一终态,但可经reopen离开——所以"终态"指不可被
//    updateStatus触碰,而非绝对不可离开
type ComplaintStatus int

const (
	ComplaintStatusOpen       ComplaintStatus = 1 // 待处理(初始状态)
	ComplaintStatusInProgress ComplaintStatus = 2 // 处理中
	ComplaintStatusResolved   ComplaintStatus = 3 // 已解决
	ComplaintStatusClosed     ComplaintStatus = 4 // 已关闭
	ComplaintStatusReopened   ComplaintStatus = 5 // 已重开
)

// String 实现Stringer接口(方便日志输出)
func (s ComplaintStatus) String() string {
	switch s {
	case ComplaintStatusOpen:
		return "待处理"
	case ComplaintStatusInProgress:
		return "处理中"
	case ComplaintStatusResolved:
		return "已解决"
	case ComplaintStatusClosed:
		return "已关闭"
	case ComplaintStatusReopened:
		return "已重开"
	default:
		return "未知状态"
	}
}

// IsOpen 是否属于"未了结"状态(客户聚合的openComplaints口径)
func (s ComplaintStatus) IsOpen() bool {
	return s == ComplaintStatusOpen || s == ComplaintStatusInProgress || s == ComplaintStatusReopened
}

// Category 投诉类别
type Category string

const (
	CategoryProductQuality  Category = "ProductQuality"  // 商品质量
	CategoryDeliveryIssue   Category = "DeliveryIssue"   // 物流配送
	CategoryCustomerService Category = "CustomerService" // 客服服务
	CategoryPaymentIssue    Category = "PaymentIssue"    // 支付问题
	CategoryOther           Category = "Other"           // 其他
)

// Valid 类别是否合法
func (c Category) Valid() bool {
	switch c {
	case CategoryProductQuality, CategoryDeliveryIssue, CategoryCustomerService, CategoryPaymentIssue, CategoryOther:
		return true
	}
	return false
}

// Priority 投诉优先级
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Valid 优先级是否合法
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// updateStatusTransitions updateStatus允许的流转
// 教学要点:触碰Closed/Reopened的流转不走这张表——关闭/重开是
// 带有专属副作用(closedAt/reopenedCount)的独立操作
var updateStatusTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusOpen:       {ComplaintStatusInProgress, ComplaintStatusResolved},
	ComplaintStatusInProgress: {ComplaintStatusOpen, ComplaintStatusResolved},
	// 重开后回到正常处理流
	ComplaintStatusReopened: {ComplaintStatusOpen, ComplaintStatusInProgress},
	ComplaintStatusResolved: {},
	ComplaintStatusClosed:   {},
}

// Complaint 投诉实体(聚合根)
// 教学要点:
// 1. ComplaintNo是业务主键(CMP-{年份}-{7位序列}),创建后不可变
// 2. 可选关联订单(OrderNo为空表示一般性投诉)——弱引用,只存单号
// 3. 解决/关闭/重开的历史字段只追加不清除,全部保留供审计
type Complaint struct {
	ID          uint
	ComplaintNo string
	CustomerID  uint
	OrderNo     string // 可选,关联订单业务单号
	Category    Category
	Priority    Priority
	Subject     string
	Description string
	Status      ComplaintStatus

	// 指派信息(与状态无关,除Closed外任意状态可指派)
	AssignedTo uint // 0 = 未指派
	AssignedAt *time.Time

	// 解决信息(仅在进入Resolved时设置)
	ResolutionNotes string
	ResolvedBy      uint
	ResolvedAt      *time.Time

	// 关闭信息(仅在进入Closed时设置,重开后保留)
	ClosedBy uint
	ClosedAt *time.Time

	// 重开信息(仅在Closed→Reopened时递增/设置)
	ReopenedCount int
	ReopenedBy    uint
	ReopenedAt    *time.Time

	// 客户满意度(1..5),仅Closed状态可评,0表示未评
	Satisfaction int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComplaint 创建新投诉(工厂方法)
func NewComplaint(complaintNo string, customerID uint, category Category, priority Priority, subject, description, orderNo string) (*Complaint, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if subject == "" || description == "" {
		return nil, ErrInvalidComplaint
	}
	now := time.Now()
	return &Complaint{
		ComplaintNo: complaintNo,
		CustomerID:  customerID,
		OrderNo:     orderNo,
		Category:    category,
		Priority:    priority,
		Subject:     subject,
		Description: description,
		Status:      ComplaintStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Assign 指派处理人
// 规则:除Closed外任意状态可指派;重复指派直接覆盖(指派轨迹看审计历史)
// 不改变Status
func (c *Complaint) Assign(assignee uint, by actor.Actor, notes string) (*HistoryEntry, error) {
	if c.Status == ComplaintStatusClosed {
		return nil, ErrComplaintClosed
	}
	if assignee == 0 {
		return nil, ErrInvalidAssignee
	}

	now := time.Now()
	previous := c.AssignedTo
	c.AssignedTo = assignee
	c.AssignedAt = &now
	c.UpdatedAt = now

	return newAssignEntry(c, previous, assignee, by, notes, now), nil
}

// UpdateStatus 常规状态流转(不触碰Closed/Reopened)
// 规则:Open↔InProgress、Open/InProgress→Resolved、Reopened→Open/InProgress
// notes必填(审计轨迹要求每次流转都有说明)
func (c *Complaint) UpdateStatus(target ComplaintStatus, by actor.Actor, notes string) (*HistoryEntry, error) {
	if notes == "" {
		return nil, ErrMissingNotes
	}
	if target == ComplaintStatusClosed || target == ComplaintStatusReopened {
		// 关闭/重开有专属操作,禁止从这里绕行
		return nil, ErrIllegalTransition
	}
	if !canUpdateStatusTo(c.Status, target) {
		return nil, ErrIllegalTransition
	}

	now := time.Now()
	previous := c.Status
	c.Status = target
	c.UpdatedAt = now
	if target == ComplaintStatusResolved {
		c.applyResolution(notes, by, now)
	}

	return newStatusEntry(c, previous, by, notes, now), nil
}

// Resolve 解决投诉
// 规则:当前 ∈ {Open, InProgress, Reopened};resolutionNotes必填
func (c *Complaint) Resolve(resolutionNotes string, by actor.Actor) (*HistoryEntry, error) {
	if resolutionNotes == "" {
		return nil, ErrMissingResolutionNotes
	}
	switch c.Status {
	case ComplaintStatusOpen, ComplaintStatusInProgress, ComplaintStatusReopened:
	default:
		return nil, ErrIllegalTransition
	}

	now := time.Now()
	previous := c.Status
	c.Status = ComplaintStatusResolved
	c.UpdatedAt = now
	c.applyResolution(resolutionNotes, by, now)

	return newStatusEntry(c, previous, by, resolutionNotes, now), nil
}

func (c *Complaint) applyResolution(notes string, by actor.Actor, at time.Time) {
	c.ResolutionNotes = notes
	c.ResolvedBy = by.UserID
	t := at
	c.ResolvedAt = &t
}

// Close 关闭投诉
// 规则:任意非Closed状态均可直接关闭(宽松路径,与线上后台行为一致;
// "必须先Resolved"的严格路径是业务侧口径,核心不强加)
func (c *Complaint) Close(notes string, by actor.Actor) (*HistoryEntry, error) {
	if c.Status == ComplaintStatusClosed {
		return nil, ErrIllegalTransition
	}

	now := time.Now()
	previous := c.Status
	c.Status = ComplaintStatusClosed
	c.ClosedBy = by.UserID
	t := now
	c.ClosedAt = &t
	c.UpdatedAt = now

	return newStatusEntry(c, previous, by, notes, now), nil
}

// Reopen 重开投诉
// 规则:仅Closed可重开;reason必填;ReopenedCount只增不减;
// ClosedBy/ClosedAt保留不清除(历史字段留作审计)
func (c *Complaint) Reopen(reason string, by actor.Actor) (*HistoryEntry, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}
	if c.Status != ComplaintStatusClosed {
		return nil, ErrIllegalTransition
	}

	now := time.Now()
	previous := c.Status
	c.Status = ComplaintStatusReopened
	c.ReopenedCount++
	c.ReopenedBy = by.UserID
	t := now
	c.ReopenedAt = &t
	c.UpdatedAt = now

	return newStatusEntry(c, previous, by, reason, now), nil
}

// SetSatisfaction 客户满意度评分
// 规则:仅Closed状态可评分,1..5
func (c *Complaint) SetSatisfaction(score int) error {
	if c.Status != ComplaintStatusClosed {
		return ErrNotClosed
	}
	if score < 1 || score > 5 {
		return ErrInvalidSatisfaction
	}
	c.Satisfaction = score
	c.UpdatedAt = time.Now()
	return nil
}

// AddComment 追加评论
// 规则:仅非Closed状态可评论;不改变Status,不产生状态历史
// IsInternal标志入库,内部评论的可见性由接口层控制
func (c *Complaint) AddComment(userID uint, role actor.Role, text string, isInternal bool) (*Comment, error) {
	if c.Status == ComplaintStatusClosed {
		return nil, ErrComplaintClosed
	}
	if text == "" {
		return nil, ErrInvalidComment
	}
	return &Comment{
		ComplaintNo: c.ComplaintNo,
		UserID:      userID,
		UserRole:    role,
		Content:     text,
		IsInternal:  isInternal,
		CreatedAt:   time.Now(),
	}, nil
}

func canUpdateStatusTo(from, to ComplaintStatus) bool {
	for _, s := range updateStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Comment 投诉评论
// 不是独立聚合根,必须通过Complaint的AddComment创建
type Comment struct {
	ID          uint
	ComplaintNo string
	UserID      uint
	UserRole    actor.Role
	Content     string
	IsInternal  bool // 内部备注,仅员工可见(由接口层过滤)
	CreatedAt   time.Time
}
