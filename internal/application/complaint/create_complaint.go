package complaint

import (
	"context"
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// Transactor 事务执行器(生产实现为mysql.TxManager,接口化便于单测)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sequencer 投诉单号年度序列生成器(生产实现为redis.SequenceGenerator)
type Sequencer interface {
	NextComplaintSeq(ctx context.Context, year int) (int64, error)
}

// CreateComplaintUseCase 创建投诉用例
// 设计说明：
// 1. 单号生成与订单同构(Redis年度序列,CMP-{年份}-{7位})
// 2. 可选关联订单:只校验单号格式与归属,不校验订单状态
//    (对已取消的订单投诉是完全合理的诉求)
// 3. 投诉+创建历史同一事务,事件发布在事务后
type CreateComplaintUseCase struct {
	complaintRepo complaint.Repository
	orderRepo     order.Repository
	seq           Sequencer
	txManager     Transactor
	publisher     eventbus.Publisher
}

// NewCreateComplaintUseCase 创建用例
func NewCreateComplaintUseCase(
	complaintRepo complaint.Repository,
	orderRepo order.Repository,
	seq Sequencer,
	txManager Transactor,
	publisher eventbus.Publisher,
) *CreateComplaintUseCase {
	return &CreateComplaintUseCase{
		complaintRepo: complaintRepo,
		orderRepo:     orderRepo,
		seq:           seq,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// CreateComplaintRequest 创建投诉请求
type CreateComplaintRequest struct {
	CustomerID  uint
	Category    complaint.Category
	Priority    complaint.Priority
	Subject     string
	Description string
	OrderNo     string // 可选,关联订单
}

// Execute 执行创建投诉
func (uc *CreateComplaintUseCase) Execute(ctx context.Context, req CreateComplaintRequest, by actor.Actor) (*complaint.Complaint, error) {
	// 1. 客户只能以自己的名义投诉
	if by.Role == actor.RoleCustomer && req.CustomerID != by.UserID {
		return nil, apperrors.ErrForbidden
	}

	// 2. 可选的订单关联校验:订单必须存在且属于该客户
	if req.OrderNo != "" {
		o, err := uc.orderRepo.FindByOrderNo(ctx, req.OrderNo)
		if err != nil {
			return nil, err
		}
		if !o.IsOwnedBy(req.CustomerID) {
			return nil, apperrors.ErrForbidden
		}
	}

	// 3. 生成业务单号
	year := time.Now().Year()
	seq, err := uc.seq.NextComplaintSeq(ctx, year)
	if err != nil {
		return nil, complaint.ErrComplaintNoGenerate
	}
	complaintNo := complaint.FormatComplaintNo(year, seq)

	// 4. 构造领域实体
	c, err := complaint.NewComplaint(complaintNo, req.CustomerID, req.Category, req.Priority, req.Subject, req.Description, req.OrderNo)
	if err != nil {
		return nil, err
	}

	// 5. 投诉+创建历史同一事务落库
	entry := complaint.NewCreationEntry(c, by)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.complaintRepo.Create(txCtx, c); err != nil {
			return err
		}
		return uc.complaintRepo.AppendHistory(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// 6. 事务提交后发布事件并计数
	uc.publisher.PublishComplaintStatusChanged(complaint.NewStatusChangedEvent(c, entry))
	metrics.ComplaintsCreatedTotal.Inc()

	return c, nil
}
