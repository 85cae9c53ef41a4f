package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/tradeops/internal/application/order"
	"github.com/xiebiao/tradeops/internal/domain/order"
	"github.com/xiebiao/tradeops/internal/interface/http/dto"
	"github.com/xiebiao/tradeops/internal/interface/http/middleware"
	"github.com/xiebiao/tradeops/pkg/response"
)

// OrderHandler 订单HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 操作者(actor)从认证中间件注入的Context构造,权限规则在应用层集中裁决
// 3. 生命周期流转统一走TransitionOrderUseCase,退货申请有独立的载荷校验
type OrderHandler struct {
	createUseCase     *apporder.CreateOrderUseCase
	transitionUseCase *apporder.TransitionOrderUseCase
	returnUseCase     *apporder.RequestReturnUseCase
	queryUseCase      *apporder.QueryOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	transitionUseCase *apporder.TransitionOrderUseCase,
	returnUseCase *apporder.RequestReturnUseCase,
	queryUseCase *apporder.QueryOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase:     createUseCase,
		transitionUseCase: transitionUseCase,
		returnUseCase:     returnUseCase,
		queryUseCase:      queryUseCase,
	}
}

// Create 创建订单
// @Summary      创建订单
// @Description  客户下单(需要登录),单号为ORD-{年份}-{7位序列},金额按明细重算
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误(明细为空、金额不平)"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 2. 确定归属客户:客户只能为自己下单,员工可代客下单
	by := middleware.GetActor(c)
	customerID := req.CustomerID
	if !by.IsStaff() || customerID == 0 {
		customerID = by.UserID
	}

	// 3. 转换为应用层DTO
	items := make([]apporder.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItemRequest{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
		}
	}

	// 4. 调用应用层用例
	o, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		CustomerID:      customerID,
		Items:           items,
		ShippingCharges: req.ShippingCharges,
		DeliveryAddress: req.DeliveryAddress,
	}, by)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.FromOrder(o))
}

// Transition 订单状态流转(运营通道)
// @Summary      订单状态流转
// @Description  处理中/发货/送达/取消/退货裁决,由状态机裁定合法性;发货必须携带运单号
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "订单号" example(ORD-2026-0000001)
// @Param        request body dto.TransitionOrderRequest true "目标状态与载荷"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "流转成功"
// @Failure      400 {object} response.Response "非法流转/缺少运单号/理由不足"
// @Failure      403 {object} response.Response "角色无权执行该流转"
// @Failure      409 {object} response.Response "并发冲突,请重新读取后重试"
// @Router       /api/v1/orders/{orderNo}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	var req dto.TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	o, err := h.transitionUseCase.Execute(c.Request.Context(), apporder.TransitionRequest{
		OrderNo:        c.Param("orderNo"),
		Target:         req.TargetStatus(),
		Reason:         req.Reason,
		ReasonCategory: req.ReasonCategory,
		TrackingNumber: req.TrackingNumber,
	}, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.FromOrder(o))
}

// Cancel 取消订单(客户自助通道)
// @Summary      取消订单
// @Description  客户取消自己的订单,理由不少于10字;仅限已下单/处理中状态
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "订单号" example(ORD-2026-0000001)
// @Param        request body dto.CancelOrderRequest true "取消理由"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "取消成功"
// @Failure      400 {object} response.Response "理由不足或状态不允许取消"
// @Router       /api/v1/orders/{orderNo}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	o, err := h.transitionUseCase.Execute(c.Request.Context(), apporder.TransitionRequest{
		OrderNo:        c.Param("orderNo"),
		Target:         order.OrderStatusCancelled,
		Reason:         req.Reason,
		ReasonCategory: req.ReasonCategory,
	}, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.FromOrder(o))
}

// RequestReturn 发起退货申请
// @Summary      发起退货申请
// @Description  仅已送达订单可发起;按明细行校验退货数量,说明不少于20字
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "订单号" example(ORD-2026-0000001)
// @Param        request body dto.RequestReturnRequest true "退货明细与说明"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "申请成功"
// @Failure      400 {object} response.Response "订单未送达/数量非法/说明不足"
// @Router       /api/v1/orders/{orderNo}/return [post]
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	var req dto.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	items := make([]order.ReturnItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ReturnItemRequest{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Reason:   item.Reason,
		}
	}

	o, err := h.returnUseCase.Execute(c.Request.Context(), apporder.ReturnRequest{
		OrderNo:        c.Param("orderNo"),
		Items:          items,
		ReasonCategory: req.ReasonCategory,
		Description:    req.Description,
	}, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.FromOrder(o))
}

// Get 查询订单详情
// @Summary      查询订单详情
// @Description  员工可查任意订单,客户只能查自己的
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "订单号" example(ORD-2026-0000001)
// @Success      200 {object} response.Response{data=dto.OrderResponse} "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{orderNo} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.queryUseCase.Get(c.Request.Context(), c.Param("orderNo"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromOrder(o))
}

// List 分页查询订单
// @Summary      分页查询订单
// @Description  客户查自己的订单,员工可通过customer_id查任意客户
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id query int false "客户ID(员工专用)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=dto.ListOrdersResponse} "查询成功"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	by := middleware.GetActor(c)
	customerID := req.CustomerID
	if !by.IsStaff() || customerID == 0 {
		customerID = by.UserID
	}

	orders, total, err := h.queryUseCase.List(c.Request.Context(), customerID, req.Page, req.PageSize, by)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = dto.FromOrder(o)
	}
	response.Success(c, &dto.ListOrdersResponse{
		List:  list,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	})
}

// History 查询订单审计历史
// @Summary      查询订单审计历史
// @Description  时间升序返回全部状态变更轨迹(含创建记录)
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        orderNo path string true "订单号" example(ORD-2026-0000001)
// @Success      200 {object} response.Response{data=[]dto.OrderHistoryEntry} "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{orderNo}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	entries, err := h.queryUseCase.History(c.Request.Context(), c.Param("orderNo"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromOrderHistory(entries))
}
