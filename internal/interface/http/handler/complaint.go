package handler

import (
	"github.com/gin-gonic/gin"

	appcomplaint "github.com/xiebiao/tradeops/internal/application/complaint"
	"github.com/xiebiao/tradeops/internal/domain/complaint"
	"github.com/xiebiao/tradeops/internal/interface/http/dto"
	"github.com/xiebiao/tradeops/internal/interface/http/middleware"
	"github.com/xiebiao/tradeops/pkg/response"
)

// ComplaintHandler 投诉HTTP处理器
// 设计说明：
// 1. 处置动作(指派/流转/解决/关闭)仅限员工,路由挂RequireStaff
// 2. 重开/评分/评论的细粒度权限(归属客户可操作)在应用层裁决
type ComplaintHandler struct {
	createUseCase *appcomplaint.CreateComplaintUseCase
	manageUseCase *appcomplaint.ManageComplaintUseCase
	queryUseCase  *appcomplaint.QueryComplaintUseCase
}

// NewComplaintHandler 创建投诉处理器
func NewComplaintHandler(
	createUseCase *appcomplaint.CreateComplaintUseCase,
	manageUseCase *appcomplaint.ManageComplaintUseCase,
	queryUseCase *appcomplaint.QueryComplaintUseCase,
) *ComplaintHandler {
	return &ComplaintHandler{
		createUseCase: createUseCase,
		manageUseCase: manageUseCase,
		queryUseCase:  queryUseCase,
	}
}

// Create 创建投诉
// @Summary      创建投诉
// @Description  客户以自己的名义投诉,可选关联自己的订单;单号为CMP-{年份}-{7位序列}
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateComplaintRequest true "投诉信息"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "创建成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "关联订单不属于该客户"
// @Router       /api/v1/complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 确定归属客户:客户只能以自己的名义投诉,员工可代客登记
	by := middleware.GetActor(c)
	customerID := req.CustomerID
	if !by.IsStaff() || customerID == 0 {
		customerID = by.UserID
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appcomplaint.CreateComplaintRequest{
		CustomerID:  customerID,
		Category:    complaint.Category(req.Category),
		Priority:    complaint.Priority(req.Priority),
		Subject:     req.Subject,
		Description: req.Description,
		OrderNo:     req.OrderNo,
	}, by)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.FromComplaint(result))
}

// Assign 指派处理人
// @Summary      指派处理人
// @Description  除已关闭外任意状态可指派,重复指派直接覆盖;不发布事件
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.AssignComplaintRequest true "处理人与备注"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "指派成功"
// @Failure      400 {object} response.Response "投诉已关闭"
// @Router       /api/v1/complaints/{complaintNo}/assign [post]
func (h *ComplaintHandler) Assign(c *gin.Context) {
	var req dto.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Assign(c.Request.Context(), c.Param("complaintNo"), req.Assignee, req.Notes, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// UpdateStatus 常规状态流转
// @Summary      投诉状态流转
// @Description  Open↔InProgress、→Resolved、重开后回流;关闭与重开走专属接口
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.UpdateComplaintStatusRequest true "目标状态与说明"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "流转成功"
// @Failure      400 {object} response.Response "非法流转或缺少说明"
// @Failure      409 {object} response.Response "并发冲突,请重新读取后重试"
// @Router       /api/v1/complaints/{complaintNo}/status [post]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.UpdateStatus(c.Request.Context(), c.Param("complaintNo"), req.TargetStatus(), req.Notes, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// Resolve 解决投诉
// @Summary      解决投诉
// @Description  记录解决说明与解决人;待处理/处理中/已重开均可解决
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.ResolveComplaintRequest true "解决说明"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "解决成功"
// @Router       /api/v1/complaints/{complaintNo}/resolve [post]
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	var req dto.ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Resolve(c.Request.Context(), c.Param("complaintNo"), req.ResolutionNotes, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// Close 关闭投诉
// @Summary      关闭投诉
// @Description  任意非关闭状态可关闭;关闭后客户可评分或重开
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.CloseComplaintRequest true "关闭备注"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "关闭成功"
// @Router       /api/v1/complaints/{complaintNo}/close [post]
func (h *ComplaintHandler) Close(c *gin.Context) {
	var req dto.CloseComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Close(c.Request.Context(), c.Param("complaintNo"), req.Notes, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// Reopen 重开投诉
// @Summary      重开投诉
// @Description  仅已关闭投诉可重开;员工或投诉归属客户可操作;重开次数只增不减
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.ReopenComplaintRequest true "重开理由"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "重开成功"
// @Failure      403 {object} response.Response "非归属客户"
// @Router       /api/v1/complaints/{complaintNo}/reopen [post]
func (h *ComplaintHandler) Reopen(c *gin.Context) {
	var req dto.ReopenComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Reopen(c.Request.Context(), c.Param("complaintNo"), req.Reason, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// SetSatisfaction 满意度评分
// @Summary      满意度评分
// @Description  仅投诉归属客户可评,仅已关闭状态,1..5分
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.SatisfactionRequest true "评分"
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "评分成功"
// @Failure      400 {object} response.Response "投诉未关闭或分值超界"
// @Router       /api/v1/complaints/{complaintNo}/satisfaction [post]
func (h *ComplaintHandler) SetSatisfaction(c *gin.Context) {
	var req dto.SatisfactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.SetSatisfaction(c.Request.Context(), c.Param("complaintNo"), req.Score, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// AddComment 追加评论
// @Summary      追加评论
// @Description  客户只能评论自己的投诉且不能写内部备注;已关闭投诉不可评论
// @Tags         投诉模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Param        request body dto.AddCommentRequest true "评论内容"
// @Success      200 {object} response.Response{data=dto.CommentResponse} "评论成功"
// @Router       /api/v1/complaints/{complaintNo}/comments [post]
func (h *ComplaintHandler) AddComment(c *gin.Context) {
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	comment, err := h.manageUseCase.AddComment(c.Request.Context(), c.Param("complaintNo"), req.Content, req.IsInternal, middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComment(comment))
}

// Get 查询投诉详情
// @Summary      查询投诉详情
// @Description  员工可查任意投诉,客户只能查自己的
// @Tags         投诉模块
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Success      200 {object} response.Response{data=dto.ComplaintResponse} "查询成功"
// @Failure      404 {object} response.Response "投诉不存在"
// @Router       /api/v1/complaints/{complaintNo} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	result, err := h.queryUseCase.Get(c.Request.Context(), c.Param("complaintNo"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaint(result))
}

// List 分页查询投诉
// @Summary      分页查询投诉
// @Description  客户查自己的投诉,员工可通过customer_id查任意客户
// @Tags         投诉模块
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id query int false "客户ID(员工专用)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=dto.ListComplaintsResponse} "查询成功"
// @Router       /api/v1/complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	var req dto.ListComplaintsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	by := middleware.GetActor(c)
	customerID := req.CustomerID
	if !by.IsStaff() || customerID == 0 {
		customerID = by.UserID
	}

	complaints, total, err := h.queryUseCase.List(c.Request.Context(), customerID, req.Page, req.PageSize, by)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ComplaintResponse, len(complaints))
	for i, item := range complaints {
		list[i] = dto.FromComplaint(item)
	}
	response.Success(c, &dto.ListComplaintsResponse{
		List:  list,
		Total: total,
		Page:  req.Page,
		Size:  req.PageSize,
	})
}

// History 查询投诉审计历史
// @Summary      查询投诉审计历史
// @Description  时间升序返回创建/指派/状态变更全部轨迹
// @Tags         投诉模块
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Success      200 {object} response.Response{data=[]dto.ComplaintHistoryEntry} "查询成功"
// @Router       /api/v1/complaints/{complaintNo}/history [get]
func (h *ComplaintHandler) History(c *gin.Context) {
	entries, err := h.queryUseCase.History(c.Request.Context(), c.Param("complaintNo"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromComplaintHistory(entries))
}

// ListComments 查询投诉评论
// @Summary      查询投诉评论
// @Description  客户视角过滤内部备注,员工看全部
// @Tags         投诉模块
// @Produce      json
// @Security     BearerAuth
// @Param        complaintNo path string true "投诉单号" example(CMP-2026-0000001)
// @Success      200 {object} response.Response{data=[]dto.CommentResponse} "查询成功"
// @Router       /api/v1/complaints/{complaintNo}/comments [get]
func (h *ComplaintHandler) ListComments(c *gin.Context) {
	comments, err := h.queryUseCase.Comments(c.Request.Context(), c.Param("complaintNo"), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.CommentResponse, len(comments))
	for i, item := range comments {
		list[i] = dto.FromComment(item)
	}
	response.Success(c, list)
}
