package order

import (
	"context"
	"errors"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// TransitionOrderUseCase 订单状态流转用例
// 教学要点:
// 1. 读取→领域校验→CAS写回:乐观并发的标准三段式
// 2. CAS的expected是"本次读到的状态",两个互斥操作并发时最多一个成功,
//    输家拿到ErrConcurrentModification(可重读后重试)
// 3. 状态更新与审计历史必须同一事务:历史写失败整体回滚
type TransitionOrderUseCase struct {
	orderRepo order.Repository
	txManager Transactor
	publisher eventbus.Publisher
	lifecycle config.LifecycleConfig
}

// NewTransitionOrderUseCase 创建用例
func NewTransitionOrderUseCase(
	orderRepo order.Repository,
	txManager Transactor,
	publisher eventbus.Publisher,
	lifecycle config.LifecycleConfig,
) *TransitionOrderUseCase {
	return &TransitionOrderUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		publisher: publisher,
		lifecycle: lifecycle,
	}
}

// TransitionRequest 状态流转请求
type TransitionRequest struct {
	OrderNo        string
	Target         order.OrderStatus
	Reason         string // 取消时必填(不少于配置的最小长度)
	ReasonCategory string // 取消归因标签,可为空
	TrackingNumber string // 发货时必填
}

// Execute 执行状态流转
func (uc *TransitionOrderUseCase) Execute(ctx context.Context, req TransitionRequest, by actor.Actor) (*order.Order, error) {
	o, err := uc.execute(ctx, req, by)
	metrics.OrderTransitionsTotal.With(map[string]string{
		"target": req.Target.String(),
		"result": transitionResult(err),
	}).Inc()
	return o, err
}

func (uc *TransitionOrderUseCase) execute(ctx context.Context, req TransitionRequest, by actor.Actor) (*order.Order, error) {
	// 1. 读取订单
	o, err := uc.orderRepo.FindByOrderNo(ctx, req.OrderNo)
	if err != nil {
		return nil, err
	}

	// 2. 归属校验:客户只能操作自己的订单
	if by.Role == actor.RoleCustomer && !o.IsOwnedBy(by.UserID) {
		return nil, apperrors.ErrForbidden
	}

	// 3. 领域层执行流转(状态机+角色+载荷校验)
	expected := o.Status
	entry, err := o.ApplyTransition(req.Target, by, req.Reason, req.ReasonCategory, req.TrackingNumber, uc.lifecycle.CancelReasonMinLen)
	if err != nil {
		return nil, err
	}

	// 4. CAS写回+审计历史,同一事务
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.UpdateStatusCAS(txCtx, o, expected); err != nil {
			return err
		}
		return uc.orderRepo.AppendHistory(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// 5. 事务提交后发布事件(fire-and-forget)
	uc.publisher.PublishOrderStatusChanged(order.NewStatusChangedEvent(o, entry))

	return o, nil
}

// transitionResult 将错误归类为指标的result标签
func transitionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, order.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, order.ErrIllegalTransition), errors.Is(err, order.ErrReturnNotDelivered):
		return "illegal"
	default:
		return "error"
	}
}
