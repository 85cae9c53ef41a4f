package complaint

import (
	"context"
	"errors"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// ManageComplaintUseCase 投诉处理用例(指派/流转/解决/关闭/重开/评分/评论)
// 教学要点:
// 1. 所有变更操作同构:读取→领域操作→CAS写回+审计历史同一事务
// 2. 只有状态类变更发布事件(指派不影响openComplaints口径,无需触发对账)
// 3. 权限规则集中在这一层:处置动作仅限员工,重开/评分允许投诉归属客户
type ManageComplaintUseCase struct {
	complaintRepo complaint.Repository
	txManager     Transactor
	publisher     eventbus.Publisher
}

// NewManageComplaintUseCase 创建用例
func NewManageComplaintUseCase(
	complaintRepo complaint.Repository,
	txManager Transactor,
	publisher eventbus.Publisher,
) *ManageComplaintUseCase {
	return &ManageComplaintUseCase{
		complaintRepo: complaintRepo,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// Assign 指派处理人(仅员工)
func (uc *ManageComplaintUseCase) Assign(ctx context.Context, complaintNo string, assignee uint, notes string, by actor.Actor) (*complaint.Complaint, error) {
	return uc.mutate(ctx, complaintNo, "assign", by, staffOnly, func(c *complaint.Complaint) (*complaint.HistoryEntry, error) {
		return c.Assign(assignee, by, notes)
	})
}

// UpdateStatus 常规状态流转(仅员工;不触碰Closed/Reopened)
func (uc *ManageComplaintUseCase) UpdateStatus(ctx context.Context, complaintNo string, target complaint.ComplaintStatus, notes string, by actor.Actor) (*complaint.Complaint, error) {
	return uc.mutate(ctx, complaintNo, "update_status", by, staffOnly, func(c *complaint.Complaint) (*complaint.HistoryEntry, error) {
		return c.UpdateStatus(target, by, notes)
	})
}

// Resolve 解决投诉(仅员工)
func (uc *ManageComplaintUseCase) Resolve(ctx context.Context, complaintNo, resolutionNotes string, by actor.Actor) (*complaint.Complaint, error) {
	return uc.mutate(ctx, complaintNo, "resolve", by, staffOnly, func(c *complaint.Complaint) (*complaint.HistoryEntry, error) {
		return c.Resolve(resolutionNotes, by)
	})
}

// Close 关闭投诉(仅员工)
func (uc *ManageComplaintUseCase) Close(ctx context.Context, complaintNo, notes string, by actor.Actor) (*complaint.Complaint, error) {
	return uc.mutate(ctx, complaintNo, "close", by, staffOnly, func(c *complaint.Complaint) (*complaint.HistoryEntry, error) {
		return c.Close(notes, by)
	})
}

// Reopen 重开投诉(员工或投诉归属客户)
func (uc *ManageComplaintUseCase) Reopen(ctx context.Context, complaintNo, reason string, by actor.Actor) (*complaint.Complaint, error) {
	return uc.mutate(ctx, complaintNo, "reopen", by, staffOrOwner, func(c *complaint.Complaint) (*complaint.HistoryEntry, error) {
		return c.Reopen(reason, by)
	})
}

// SetSatisfaction 满意度评分(仅投诉归属客户;仅Closed状态)
// 评分不是状态变更:无审计历史、不发布事件
func (uc *ManageComplaintUseCase) SetSatisfaction(ctx context.Context, complaintNo string, score int, by actor.Actor) (*complaint.Complaint, error) {
	c, err := uc.complaintRepo.FindByComplaintNo(ctx, complaintNo)
	if err != nil {
		return nil, err
	}
	if by.Role != actor.RoleCustomer || c.CustomerID != by.UserID {
		return nil, apperrors.ErrForbidden
	}

	expected := c.Status
	if err := c.SetSatisfaction(score); err != nil {
		return nil, err
	}
	if err := uc.complaintRepo.UpdateCAS(ctx, c, expected); err != nil {
		return nil, err
	}
	return c, nil
}

// AddComment 追加评论
// 客户只能评论自己的投诉且不能写内部备注;员工可评论任意投诉
func (uc *ManageComplaintUseCase) AddComment(ctx context.Context, complaintNo, text string, isInternal bool, by actor.Actor) (*complaint.Comment, error) {
	c, err := uc.complaintRepo.FindByComplaintNo(ctx, complaintNo)
	if err != nil {
		return nil, err
	}
	if by.Role == actor.RoleCustomer {
		if c.CustomerID != by.UserID || isInternal {
			return nil, apperrors.ErrForbidden
		}
	}

	comment, err := c.AddComment(by.UserID, by.Role, text, isInternal)
	if err != nil {
		return nil, err
	}
	if err := uc.complaintRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// permissionCheck 操作权限校验
type permissionCheck func(c *complaint.Complaint, by actor.Actor) error

func staffOnly(_ *complaint.Complaint, by actor.Actor) error {
	if !by.IsStaff() {
		return apperrors.ErrForbidden
	}
	return nil
}

func staffOrOwner(c *complaint.Complaint, by actor.Actor) error {
	if by.IsStaff() {
		return nil
	}
	if by.Role == actor.RoleCustomer && c.CustomerID == by.UserID {
		return nil
	}
	return apperrors.ErrForbidden
}

// mutate 变更操作的公共骨架:读取→权限→领域操作→CAS+历史同事务→事件
func (uc *ManageComplaintUseCase) mutate(
	ctx context.Context,
	complaintNo, action string,
	by actor.Actor,
	check permissionCheck,
	op func(c *complaint.Complaint) (*complaint.HistoryEntry, error),
) (*complaint.Complaint, error) {
	c, err := uc.execute(ctx, complaintNo, by, check, op)
	metrics.ComplaintTransitionsTotal.With(map[string]string{
		"action": action,
		"result": actionResult(err),
	}).Inc()
	return c, err
}

func (uc *ManageComplaintUseCase) execute(
	ctx context.Context,
	complaintNo string,
	by actor.Actor,
	check permissionCheck,
	op func(c *complaint.Complaint) (*complaint.HistoryEntry, error),
) (*complaint.Complaint, error) {
	c, err := uc.complaintRepo.FindByComplaintNo(ctx, complaintNo)
	if err != nil {
		return nil, err
	}
	if err := check(c, by); err != nil {
		return nil, err
	}

	expected := c.Status
	entry, err := op(c)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.complaintRepo.UpdateCAS(txCtx, c, expected); err != nil {
			return err
		}
		return uc.complaintRepo.AppendHistory(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// 指派不改变状态,不发布事件;状态类变更触发对账
	if entry.Action == complaint.ActionStatusChanged {
		uc.publisher.PublishComplaintStatusChanged(complaint.NewStatusChangedEvent(c, entry))
	}

	return c, nil
}

// actionResult 将错误归类为指标的result标签
func actionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, complaint.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, complaint.ErrIllegalTransition), errors.Is(err, complaint.ErrComplaintClosed):
		return "illegal"
	default:
		return "error"
	}
}
