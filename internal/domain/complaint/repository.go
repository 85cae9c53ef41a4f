package complaint

import (
	"context"
)

// Repository 投诉仓储接口(依赖倒置原则)
// 状态更新走CAS语义,约定与订单仓储一致(见订单域repository.go)
type Repository interface {
	// Create 创建投诉
	Create(ctx context.Context, c *Complaint) error

	// FindByComplaintNo 根据业务单号查找投诉
	FindByComplaintNo(ctx context.Context, complaintNo string) (*Complaint, error)

	// UpdateCAS 以乐观并发守卫更新投诉(状态、指派、解决/关闭/重开字段)
	// UPDATE ... WHERE complaint_no = ? AND status = <expected>:
	//   - 0行受影响且投诉存在 → ErrConcurrentModification
	//   - 0行受影响且投诉不存在 → ErrComplaintNotFound
	UpdateCAS(ctx context.Context, c *Complaint, expected ComplaintStatus) error

	// ListByCustomerID 分页查询客户投诉
	ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*Complaint, int64, error)

	// FindAllByCustomerID 查询客户全部投诉(聚合对账用,不分页)
	FindAllByCustomerID(ctx context.Context, customerID uint) ([]*Complaint, error)

	// ListCustomerIDs 投诉库中出现过的全部客户ID(全量对账扫描用)
	ListCustomerIDs(ctx context.Context) ([]uint, error)

	// AppendHistory 追加审计历史(只增不改,与变更同事务)
	AppendHistory(ctx context.Context, entry *HistoryEntry) error

	// ListHistory 按时间顺序返回投诉全部历史
	ListHistory(ctx context.Context, complaintNo string) ([]*HistoryEntry, error)

	// AddComment 追加评论
	AddComment(ctx context.Context, comment *Comment) error

	// ListComments 返回投诉评论(internalVisible=false时过滤内部备注)
	ListComments(ctx context.Context, complaintNo string, internalVisible bool) ([]*Comment, error)
}
