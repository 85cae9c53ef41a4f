package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcustomer "github.com/xiebiao/tradeops/internal/application/customer"
	"github.com/xiebiao/tradeops/internal/interface/http/dto"
	"github.com/xiebiao/tradeops/internal/interface/http/middleware"
	"github.com/xiebiao/tradeops/pkg/response"
)

// CustomerHandler 客户画像HTTP处理器
// 设计说明：画像是派生聚合(物化视图),接口只读;
// 手动对账接口供运营在怀疑画像漂移时使用
type CustomerHandler struct {
	queryUseCase     *appcustomer.QueryCustomerUseCase
	reconcileUseCase *appcustomer.ReconcileUseCase
}

// NewCustomerHandler 创建客户画像处理器
func NewCustomerHandler(
	queryUseCase *appcustomer.QueryCustomerUseCase,
	reconcileUseCase *appcustomer.ReconcileUseCase,
) *CustomerHandler {
	return &CustomerHandler{
		queryUseCase:     queryUseCase,
		reconcileUseCase: reconcileUseCase,
	}
}

// GetAggregate 查询客户运营画像
// @Summary      查询客户运营画像
// @Description  有效订单数/总额、未了结投诉数、最近下单与投诉时间;员工可查任意客户,客户只能查自己
// @Tags         客户画像
// @Produce      json
// @Security     BearerAuth
// @Param        customerID path int true "客户ID" example(100)
// @Success      200 {object} response.Response{data=dto.CustomerAggregateResponse} "查询成功"
// @Failure      404 {object} response.Response "画像不存在(客户从未下单或投诉)"
// @Router       /api/v1/customers/{customerID}/aggregate [get]
func (h *CustomerHandler) GetAggregate(c *gin.Context) {
	customerID, err := parseCustomerID(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 客户ID必须为正整数")
		return
	}

	agg, err := h.queryUseCase.Get(c.Request.Context(), customerID, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromCustomerAggregate(agg))
}

// Reconcile 手动触发单客户对账
// @Summary      手动触发对账
// @Description  对单个客户立即全量重算画像(仅员工);源库不可用时整体放弃,旧画像保留
// @Tags         客户画像
// @Produce      json
// @Security     BearerAuth
// @Param        customerID path int true "客户ID" example(100)
// @Success      200 {object} response.Response{data=dto.ReconcileResponse} "对账完成"
// @Failure      500 {object} response.Response "源库不可用,本次对账放弃"
// @Router       /api/v1/customers/{customerID}/reconcile [post]
func (h *CustomerHandler) Reconcile(c *gin.Context) {
	customerID, err := parseCustomerID(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: 客户ID必须为正整数")
		return
	}

	if err := h.reconcileUseCase.Reconcile(c.Request.Context(), customerID, appcustomer.TriggerManual); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ReconcileResponse{
		CustomerID: customerID,
		Reconciled: 1,
		Trigger:    appcustomer.TriggerManual,
	})
}

// ReconcileAll 手动触发全量对账
// @Summary      手动触发全量对账
// @Description  对订单库与投诉库出现过的全部客户重算画像(仅员工);单客户失败不中断
// @Tags         客户画像
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.ReconcileResponse} "对账完成"
// @Router       /api/v1/reconcile [post]
func (h *CustomerHandler) ReconcileAll(c *gin.Context) {
	n, err := h.reconcileUseCase.ReconcileAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ReconcileResponse{
		Reconciled: n,
		Trigger:    appcustomer.TriggerManual,
	})
}

func parseCustomerID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("customerID"), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
