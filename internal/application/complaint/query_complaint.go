package complaint

import (
	"context"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// QueryComplaintUseCase 投诉查询用例
// 可见性规则:员工可查任意投诉,客户只能查自己的;
// 内部评论只对员工可见(在仓储层过滤)
type QueryComplaintUseCase struct {
	complaintRepo complaint.Repository
}

// NewQueryComplaintUseCase 创建查询用例
func NewQueryComplaintUseCase(complaintRepo complaint.Repository) *QueryComplaintUseCase {
	return &QueryComplaintUseCase{complaintRepo: complaintRepo}
}

// Get 查询投诉详情
func (uc *QueryComplaintUseCase) Get(ctx context.Context, complaintNo string, by actor.Actor) (*complaint.Complaint, error) {
	c, err := uc.complaintRepo.FindByComplaintNo(ctx, complaintNo)
	if err != nil {
		return nil, err
	}
	if by.Role == actor.RoleCustomer && c.CustomerID != by.UserID {
		// 对客户隐藏他人投诉的存在性
		return nil, complaint.ErrComplaintNotFound
	}
	return c, nil
}

// List 分页查询客户投诉
func (uc *QueryComplaintUseCase) List(ctx context.Context, customerID uint, page, pageSize int, by actor.Actor) ([]*complaint.Complaint, int64, error) {
	if by.Role == actor.RoleCustomer && customerID != by.UserID {
		return nil, 0, apperrors.ErrForbidden
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return uc.complaintRepo.ListByCustomerID(ctx, customerID, page, pageSize)
}

// History 查询投诉审计历史(时间升序)
func (uc *QueryComplaintUseCase) History(ctx context.Context, complaintNo string, by actor.Actor) ([]*complaint.HistoryEntry, error) {
	if _, err := uc.Get(ctx, complaintNo, by); err != nil {
		return nil, err
	}
	return uc.complaintRepo.ListHistory(ctx, complaintNo)
}

// Comments 查询投诉评论
// 客户视角过滤内部备注,员工看全部
func (uc *QueryComplaintUseCase) Comments(ctx context.Context, complaintNo string, by actor.Actor) ([]*complaint.Comment, error) {
	if _, err := uc.Get(ctx, complaintNo, by); err != nil {
		return nil, err
	}
	return uc.complaintRepo.ListComments(ctx, complaintNo, by.IsStaff())
}
