package dto

import (
	"github.com/xiebiao/tradeops/internal/domain/complaint"
)

// CreateComplaintRequest HTTP创建投诉请求
type CreateComplaintRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"omitempty"` // 员工代客登记时指定,客户投诉忽略
	Category    string `json:"category" binding:"required,oneof=ProductQuality DeliveryIssue CustomerService PaymentIssue Other" example:"DeliveryIssue"`
	Priority    string `json:"priority" binding:"required,oneof=Low Medium High Critical" example:"High"`
	Subject     string `json:"subject" binding:"required,max=200" example:"包裹迟迟未送达"`
	Description string `json:"description" binding:"required,max=5000" example:"订单显示已发货一周仍未收到"`
	OrderNo     string `json:"order_no" binding:"omitempty,max=20" example:"ORD-2026-0000001"` // 可选,关联订单
}

// AssignComplaintRequest HTTP指派请求
type AssignComplaintRequest struct {
	Assignee uint   `json:"assignee" binding:"required" example:"42"`
	Notes    string `json:"notes" binding:"max=500" example:"转交二线处理"`
}

// UpdateComplaintStatusRequest HTTP状态流转请求
// target取值: open/in_progress/resolved(关闭与重开走专属接口)
type UpdateComplaintStatusRequest struct {
	Target string `json:"target" binding:"required,oneof=open in_progress resolved" example:"in_progress"`
	Notes  string `json:"notes" binding:"required,max=500" example:"已联系物流核实"`
}

// TargetStatus 将请求中的字符串映射为投诉状态
func (r *UpdateComplaintStatusRequest) TargetStatus() complaint.ComplaintStatus {
	switch r.Target {
	case "open":
		return complaint.ComplaintStatusOpen
	case "in_progress":
		return complaint.ComplaintStatusInProgress
	case "resolved":
		return complaint.ComplaintStatusResolved
	}
	return 0
}

// ResolveComplaintRequest HTTP解决投诉请求
type ResolveComplaintRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"required,max=2000" example:"已与客户确认补发"`
}

// CloseComplaintRequest HTTP关闭投诉请求
type CloseComplaintRequest struct {
	Notes string `json:"notes" binding:"max=500" example:"客户确认解决"`
}

// ReopenComplaintRequest HTTP重开投诉请求
type ReopenComplaintRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"问题并未解决,补发的还是坏的"`
}

// SatisfactionRequest HTTP满意度评分请求
type SatisfactionRequest struct {
	Score int `json:"score" binding:"required,min=1,max=5" example:"4"`
}

// AddCommentRequest HTTP追加评论请求
type AddCommentRequest struct {
	Content    string `json:"content" binding:"required,max=2000" example:"今天补发的包裹已发出"`
	IsInternal bool   `json:"is_internal"` // 内部备注,仅员工可用
}

// ComplaintResponse HTTP投诉详情响应
type ComplaintResponse struct {
	ID          uint   `json:"id" example:"1"`
	ComplaintNo string `json:"complaint_no" example:"CMP-2026-0000001"`
	CustomerID  uint   `json:"customer_id" example:"100"`
	OrderNo     string `json:"order_no,omitempty" example:"ORD-2026-0000001"`
	Category    string `json:"category" example:"DeliveryIssue"`
	Priority    string `json:"priority" example:"High"`
	Subject     string `json:"subject" example:"包裹迟迟未送达"`
	Description string `json:"description"`
	Status      string `json:"status" example:"待处理"`

	AssignedTo uint   `json:"assigned_to,omitempty" example:"42"`
	AssignedAt string `json:"assigned_at,omitempty"`

	ResolutionNotes string `json:"resolution_notes,omitempty"`
	ResolvedBy      uint   `json:"resolved_by,omitempty"`
	ResolvedAt      string `json:"resolved_at,omitempty"`

	ClosedBy uint   `json:"closed_by,omitempty"`
	ClosedAt string `json:"closed_at,omitempty"`

	ReopenedCount int    `json:"reopened_count" example:"0"`
	ReopenedBy    uint   `json:"reopened_by,omitempty"`
	ReopenedAt    string `json:"reopened_at,omitempty"`

	Satisfaction int `json:"satisfaction,omitempty" example:"4"` // 1..5,0表示未评

	CreatedAt string `json:"created_at" example:"2026-01-15 10:30:00"`
	UpdatedAt string `json:"updated_at" example:"2026-01-15 10:30:00"`
}

// FromComplaint 将投诉实体转换为HTTP响应
func FromComplaint(c *complaint.Complaint) *ComplaintResponse {
	return &ComplaintResponse{
		ID:              c.ID,
		ComplaintNo:     c.ComplaintNo,
		CustomerID:      c.CustomerID,
		OrderNo:         c.OrderNo,
		Category:        string(c.Category),
		Priority:        string(c.Priority),
		Subject:         c.Subject,
		Description:     c.Description,
		Status:          c.Status.String(),
		AssignedTo:      c.AssignedTo,
		AssignedAt:      formatTimePtr(c.AssignedAt),
		ResolutionNotes: c.ResolutionNotes,
		ResolvedBy:      c.ResolvedBy,
		ResolvedAt:      formatTimePtr(c.ResolvedAt),
		ClosedBy:        c.ClosedBy,
		ClosedAt:        formatTimePtr(c.ClosedAt),
		ReopenedCount:   c.ReopenedCount,
		ReopenedBy:      c.ReopenedBy,
		ReopenedAt:      formatTimePtr(c.ReopenedAt),
		Satisfaction:    c.Satisfaction,
		CreatedAt:       formatTime(c.CreatedAt),
		UpdatedAt:       formatTime(c.UpdatedAt),
	}
}

// ListComplaintsRequest HTTP投诉列表请求
type ListComplaintsRequest struct {
	CustomerID uint `form:"customer_id" binding:"omitempty"` // 员工查任意客户,客户忽略此参数
	Page       int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// ListComplaintsResponse HTTP投诉列表响应
type ListComplaintsResponse struct {
	List  []*ComplaintResponse `json:"list"`
	Total int64                `json:"total" example:"100"`
	Page  int                  `json:"page" example:"1"`
	Size  int                  `json:"size" example:"20"`
}

// ComplaintHistoryEntry HTTP投诉审计历史项
type ComplaintHistoryEntry struct {
	ID               uint   `json:"id" example:"1"`
	ComplaintNo      string `json:"complaint_no" example:"CMP-2026-0000001"`
	Action           string `json:"action" example:"status_changed"`
	PreviousStatus   string `json:"previous_status,omitempty" example:"待处理"`
	NewStatus        string `json:"new_status,omitempty" example:"处理中"`
	PreviousAssignee uint   `json:"previous_assignee,omitempty"`
	NewAssignee      uint   `json:"new_assignee,omitempty"`
	ChangedBy        uint   `json:"changed_by" example:"1"`
	ChangedByRole    string `json:"changed_by_role" example:"admin"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at" example:"2026-01-15 10:30:00"`
}

// FromComplaintHistory 将审计历史转换为HTTP响应
func FromComplaintHistory(entries []*complaint.HistoryEntry) []ComplaintHistoryEntry {
	out := make([]ComplaintHistoryEntry, len(entries))
	for i, e := range entries {
		prev, curr := "", ""
		if e.PreviousStatus != nil {
			prev = e.PreviousStatus.String()
		}
		if e.NewStatus != nil {
			curr = e.NewStatus.String()
		}
		out[i] = ComplaintHistoryEntry{
			ID:               e.ID,
			ComplaintNo:      e.ComplaintNo,
			Action:           string(e.Action),
			PreviousStatus:   prev,
			NewStatus:        curr,
			PreviousAssignee: e.PreviousAssignee,
			NewAssignee:      e.NewAssignee,
			ChangedBy:        e.ChangedBy,
			ChangedByRole:    string(e.ChangedByRole),
			Notes:            e.Notes,
			CreatedAt:        formatTime(e.CreatedAt),
		}
	}
	return out
}

// CommentResponse HTTP投诉评论响应
type CommentResponse struct {
	ID          uint   `json:"id" example:"1"`
	ComplaintNo string `json:"complaint_no" example:"CMP-2026-0000001"`
	UserID      uint   `json:"user_id" example:"100"`
	UserRole    string `json:"user_role" example:"customer"`
	Content     string `json:"content"`
	IsInternal  bool   `json:"is_internal"`
	CreatedAt   string `json:"created_at" example:"2026-01-15 10:30:00"`
}

// FromComment 将评论转换为HTTP响应
func FromComment(c *complaint.Comment) *CommentResponse {
	return &CommentResponse{
		ID:          c.ID,
		ComplaintNo: c.ComplaintNo,
		UserID:      c.UserID,
		UserRole:    string(c.UserRole),
		Content:     c.Content,
		IsInternal:  c.IsInternal,
		CreatedAt:   formatTime(c.CreatedAt),
	}
}
