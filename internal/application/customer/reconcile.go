package customer

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/domain/customer"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/infrastructure/config"
	"github.com/xiebiao/tradeops/pkg/circuitbreaker"
	"github.com/xiebiao/tradeops/pkg/metrics"
)

// 对账触发源(指标的trigger标签)
const (
	TriggerEvent  = "event"  // 状态变更事件
	TriggerSweep  = "sweep"  // 周期性全量扫描
	TriggerManual = "manual" // 管理接口手工触发
)

// ReconcileUseCase 客户画像对账用例
// 教学要点:
// 1. 全量重算覆盖,永不增量修补:读两侧事实→Recompute→Upsert整行,
//    任何中间态丢失都能被下一次对账完全治愈
// 2. 整体放弃(abandon-wholesale):任一侧读失败就放弃本轮,保留旧画像——
//    宁可陈旧,不可半新半旧(只算了订单没算投诉的画像是错的)
// 3. 源库读取由熔断器保护:源库持续故障时快速失败,不拖垮对账循环
type ReconcileUseCase struct {
	orderRepo        order.Repository
	complaintRepo    complaint.Repository
	customerRepo     customer.Repository
	orderBreaker     *circuitbreaker.CircuitBreaker
	complaintBreaker *circuitbreaker.CircuitBreaker
}

// NewReconcileUseCase 创建对账用例
// 两个源库各配独立熔断器:订单库故障不应阻止投诉侧指标的健康探测
func NewReconcileUseCase(
	orderRepo order.Repository,
	complaintRepo complaint.Repository,
	customerRepo customer.Repository,
	cfg config.ReconcilerConfig,
) *ReconcileUseCase {
	maxFailures := uint32(cfg.BreakerMaxFailures)
	if maxFailures == 0 {
		maxFailures = 5
	}
	resetTimeout := cfg.BreakerResetTimeout
	if resetTimeout == 0 {
		resetTimeout = 30 * time.Second
	}

	newBreaker := func(name string) *circuitbreaker.CircuitBreaker {
		return circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     resetTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		})
	}

	return &ReconcileUseCase{
		orderRepo:        orderRepo,
		complaintRepo:    complaintRepo,
		customerRepo:     customerRepo,
		orderBreaker:     newBreaker("order-store"),
		complaintBreaker: newBreaker("complaint-store"),
	}
}

// Reconcile 重算单个客户的画像
// trigger标识触发来源(event/sweep/manual),仅用于指标
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, customerID uint, trigger string) error {
	start := time.Now()
	err := uc.reconcile(ctx, customerID)

	result := "success"
	switch {
	case err == customer.ErrReconcileSourceUnavailable:
		result = "abandoned"
	case err != nil:
		result = "error"
	}
	metrics.ReconcileRunsTotal.With(map[string]string{
		"trigger": trigger,
		"result":  result,
	}).Inc()
	if err == nil {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}

	return err
}

func (uc *ReconcileUseCase) reconcile(ctx context.Context, customerID uint) error {
	// 1. 读订单侧事实(熔断器保护)
	var orders []*order.Order
	err := uc.orderBreaker.Execute(func() error {
		var e error
		orders, e = uc.orderRepo.FindAllByCustomerID(ctx, customerID)
		return e
	})
	if err != nil {
		// 整体放弃:保留上一次成功的画像
		return customer.ErrReconcileSourceUnavailable
	}

	// 2. 读投诉侧事实
	var complaints []*complaint.Complaint
	err = uc.complaintBreaker.Execute(func() error {
		var e error
		complaints, e = uc.complaintRepo.FindAllByCustomerID(ctx, customerID)
		return e
	})
	if err != nil {
		return customer.ErrReconcileSourceUnavailable
	}

	// 3. 纯函数重算+整行覆盖写入
	agg := customer.Recompute(customerID, orders, complaints, time.Now())
	return uc.customerRepo.Upsert(ctx, agg)
}

// ReconcileAll 全量对账(兜底自愈)
// 扫描两侧出现过的全部客户ID取并集,逐一重算;单个客户失败不中断扫描
// 返回成功重算的客户数
func (uc *ReconcileUseCase) ReconcileAll(ctx context.Context) (int, error) {
	orderIDs, err := uc.orderRepo.ListCustomerIDs(ctx)
	if err != nil {
		return 0, err
	}
	complaintIDs, err := uc.complaintRepo.ListCustomerIDs(ctx)
	if err != nil {
		return 0, err
	}

	// 并集去重:只在一侧出现过的客户同样需要画像
	seen := make(map[uint]struct{}, len(orderIDs)+len(complaintIDs))
	ids := make([]uint, 0, len(orderIDs)+len(complaintIDs))
	for _, id := range append(orderIDs, complaintIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	succeeded := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return succeeded, ctx.Err()
		default:
		}

		if err := uc.Reconcile(ctx, id, TriggerSweep); err != nil {
			// 单个客户失败只记日志,下一轮扫描会再次尝试
			log.Printf("⚠️ 客户画像对账失败: customer_id=%d, err=%v", id, err)
			continue
		}
		succeeded++
	}

	return succeeded, nil
}

// RunSweeper 周期性全量对账(阻塞,直到ctx取消)
// 启动时先跑一轮:进程重启期间丢失的事件立刻补齐
func (uc *ReconcileUseCase) RunSweeper(ctx context.Context, interval time.Duration) {
	run := func() {
		n, err := uc.ReconcileAll(ctx)
		if err != nil {
			log.Printf("⚠️ 全量对账中断: 已完成%d个客户, err=%v", n, err)
			return
		}
		log.Printf("✅ 全量对账完成: %d个客户", n)
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 全量对账循环退出")
			return
		case <-ticker.C:
			run()
		}
	}
}
