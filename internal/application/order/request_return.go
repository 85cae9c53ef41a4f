package order

import (
	"context"

	"github.com/xiebiao/tradeops/internal/domain/actor"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/internal/infrastructure/eventbus"
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// RequestReturnUseCase 退货申请用例
// 与状态流转同构,但多一步:明细行的退货标记也要在同一事务落库
type RequestReturnUseCase struct {
	orderRepo order.Repository
	txManager Transactor
	publisher eventbus.Publisher
	lifecycle config.LifecycleConfig
}

// NewRequestReturnUseCase 创建用例
func NewRequestReturnUseCase(
	orderRepo order.Repository,
	txManager Transactor,
	publisher eventbus.Publisher,
	lifecycle config.LifecycleConfig,
) *RequestReturnUseCase {
	return &RequestReturnUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		publisher: publisher,
		lifecycle: lifecycle,
	}
}

// ReturnRequest 退货申请请求
type ReturnRequest struct {
	OrderNo        string
	Items          []order.ReturnItemRequest
	ReasonCategory string
	Description    string // 不少于配置的最小长度(默认20字符)
}

// Execute 执行退货申请
func (uc *RequestReturnUseCase) Execute(ctx context.Context, req ReturnRequest, by actor.Actor) (*order.Order, error) {
	o, err := uc.execute(ctx, req, by)
	metrics.OrderTransitionsTotal.With(map[string]string{
		"target": order.OrderStatusReturnRequested.String(),
		"result": transitionResult(err),
	}).Inc()
	return o, err
}

func (uc *RequestReturnUseCase) execute(ctx context.Context, req ReturnRequest, by actor.Actor) (*order.Order, error) {
	// 1. 读取订单
	o, err := uc.orderRepo.FindByOrderNo(ctx, req.OrderNo)
	if err != nil {
		return nil, err
	}

	// 2. 归属校验
	if by.Role == actor.RoleCustomer && !o.IsOwnedBy(by.UserID) {
		return nil, apperrors.ErrForbidden
	}

	// 3. 领域层校验并落标记(仅Delivered可发起,按行校验数量上界)
	expected := o.Status
	entry, err := o.RequestReturn(req.Items, req.ReasonCategory, req.Description, by, uc.lifecycle.ReturnDescMinLen)
	if err != nil {
		return nil, err
	}

	// 4. 状态CAS+明细标记+审计历史,同一事务
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.UpdateStatusCAS(txCtx, o, expected); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateItemsReturn(txCtx, o); err != nil {
			return err
		}
		return uc.orderRepo.AppendHistory(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// 5. 发布事件
	uc.publisher.PublishOrderStatusChanged(order.NewStatusChangedEvent(o, entry))

	return o, nil
}
