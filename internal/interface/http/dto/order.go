package dto

import (
	"fmt"
	"time"

	"github.com/xiebiao/tradeops/internal/domain/order"
)

// timeLayout 响应中统一的时间格式
const timeLayout = "2006-01-02 15:04:05"

// FormatPriceYuan 格式化价格(分→元)
// 工具函数:将金额从分转换为元的字符串表示
// 例如:5900分 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}

// formatTime 格式化时间,零值返回空串
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// formatTimePtr 格式化可空时间
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

// CreateOrderRequest HTTP下单请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
// - dive: 对切片中的每个元素递归校验
type CreateOrderRequest struct {
	CustomerID      uint                     `json:"customer_id" binding:"omitempty"` // 员工代客下单时指定,客户下单忽略
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingCharges int64                    `json:"shipping_charges" binding:"min=0" example:"800"` // 运费(分)
	DeliveryAddress string                   `json:"delivery_address" binding:"required,max=500" example:"上海市浦东新区张江高科技园区"`
}

// CreateOrderItemRequest 订单明细项
type CreateOrderItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required" example:"7"`
	SKU       string `json:"sku" binding:"required,max=64" example:"SKU-1001"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999" example:"2"`
	UnitPrice int64  `json:"unit_price" binding:"required,min=1" example:"5000"` // 下单时单价(分)
	Discount  int64  `json:"discount" binding:"min=0" example:"0"`               // 行优惠(分)
	Tax       int64  `json:"tax" binding:"min=0" example:"0"`                    // 行税费(分)
}

// TransitionOrderRequest HTTP订单状态流转请求
// target取值: processing/shipped/delivered/cancelled/returned
type TransitionOrderRequest struct {
	Target         string `json:"target" binding:"required,oneof=processing shipped delivered cancelled returned" example:"shipped"`
	Reason         string `json:"reason" binding:"max=500" example:"客户要求取消"`                        // 取消时必填(≥10字)
	ReasonCategory string `json:"reason_category" binding:"max=50" example:"OutOfStock"`            // 取消归因标签,可选
	TrackingNumber string `json:"tracking_number" binding:"max=64" example:"SF1234567890"`          // 发货时必填
}

// TargetStatus 将请求中的字符串映射为订单状态
// 非法取值已被binding拦截,这里只做映射
func (r *TransitionOrderRequest) TargetStatus() order.OrderStatus {
	switch r.Target {
	case "processing":
		return order.OrderStatusProcessing
	case "shipped":
		return order.OrderStatusShipped
	case "delivered":
		return order.OrderStatusDelivered
	case "cancelled":
		return order.OrderStatusCancelled
	case "returned":
		return order.OrderStatusReturned
	}
	return 0
}

// CancelOrderRequest HTTP取消订单请求(客户自助通道)
type CancelOrderRequest struct {
	Reason         string `json:"reason" binding:"required,max=500" example:"下错规格了,重新下一单"`
	ReasonCategory string `json:"reason_category" binding:"max=50" example:"CustomerRequest"` // 取消归因标签,可选
}

// RequestReturnRequest HTTP退货申请请求
type RequestReturnRequest struct {
	Items          []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	ReasonCategory string              `json:"reason_category" binding:"required,oneof=Damaged WrongItem QualityIssue NoLongerNeeded Other" example:"Damaged"`
	Description    string              `json:"description" binding:"required,max=2000" example:"收到时外包装完好但屏幕左上角有明显划痕"`
}

// ReturnItemRequest 退货明细项
type ReturnItemRequest struct {
	ItemID   uint   `json:"item_id" binding:"required" example:"1"`
	Quantity int    `json:"quantity" binding:"required,min=1" example:"1"`
	Reason   string `json:"reason" binding:"max=200" example:"屏幕有划痕"`
}

// OrderResponse HTTP订单详情响应
type OrderResponse struct {
	ID                uint                `json:"id" example:"1"`
	OrderNo           string              `json:"order_no" example:"ORD-2026-0000001"`
	CustomerID        uint                `json:"customer_id" example:"100"`
	Items             []OrderItemResponse `json:"items"`
	Subtotal          int64               `json:"subtotal" example:"35050"` // 商品小计(分)
	Discount          int64               `json:"discount" example:"1000"`
	Tax               int64               `json:"tax" example:"500"`
	ShippingCharges   int64               `json:"shipping_charges" example:"800"`
	Total             int64               `json:"total" example:"35350"`
	TotalYuan         string              `json:"total_yuan" example:"353.50"` // 应付总额(元),方便前端显示
	Status            string              `json:"status" example:"已下单"`
	DeliveryAddress   string              `json:"delivery_address" example:"上海市浦东新区"`
	TrackingNumber    string              `json:"tracking_number,omitempty" example:"SF1234567890"`
	OrderDate         string              `json:"order_date" example:"2026-01-15 10:30:00"`
	EstimatedDelivery string              `json:"estimated_delivery,omitempty" example:"2026-01-22 10:30:00"`
	ActualDelivery    string              `json:"actual_delivery,omitempty"`
	Cancellation      *CancellationInfo   `json:"cancellation,omitempty"`
	Return            *ReturnInfo         `json:"return,omitempty"`
	CreatedAt         string              `json:"created_at" example:"2026-01-15 10:30:00"`
	UpdatedAt         string              `json:"updated_at" example:"2026-01-15 10:30:00"`
}

// OrderItemResponse 订单明细项响应
type OrderItemResponse struct {
	ID              uint   `json:"id" example:"1"`
	ProductID       uint   `json:"product_id" example:"7"`
	SKU             string `json:"sku" example:"SKU-1001"`
	Quantity        int    `json:"quantity" example:"2"`
	UnitPrice       int64  `json:"unit_price" example:"5000"`
	Discount        int64  `json:"discount" example:"0"`
	Tax             int64  `json:"tax" example:"0"`
	FinalPrice      int64  `json:"final_price" example:"10000"`
	ReturnRequested bool   `json:"return_requested,omitempty"`
	ReturnQuantity  int    `json:"return_quantity,omitempty"`
	ReturnReason    string `json:"return_reason,omitempty"`
}

// CancellationInfo 取消信息
type CancellationInfo struct {
	Reason         string `json:"reason"`
	ReasonCategory string `json:"reason_category,omitempty" example:"CustomerRequest"`
	CancelledBy    uint   `json:"cancelled_by"`
	CancelledAt    string `json:"cancelled_at"`
}

// ReturnInfo 退货申请信息
type ReturnInfo struct {
	ReasonCategory string `json:"reason_category" example:"Damaged"`
	Description    string `json:"description"`
	RequestedBy    uint   `json:"requested_by"`
	RequestedAt    string `json:"requested_at"`
}

// FromOrder 将订单实体转换为HTTP响应
func FromOrder(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Discount:        item.Discount,
			Tax:             item.Tax,
			FinalPrice:      item.FinalPrice,
			ReturnRequested: item.ReturnRequested,
			ReturnQuantity:  item.ReturnQuantity,
			ReturnReason:    item.ReturnReason,
		}
	}

	resp := &OrderResponse{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		CustomerID:        o.CustomerID,
		Items:             items,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Tax:               o.Tax,
		ShippingCharges:   o.ShippingCharges,
		Total:             o.Total,
		TotalYuan:         FormatPriceYuan(o.Total),
		Status:            o.Status.String(),
		DeliveryAddress:   o.DeliveryAddress,
		TrackingNumber:    o.TrackingNumber,
		OrderDate:         formatTime(o.OrderDate),
		EstimatedDelivery: formatTimePtr(o.EstimatedDelivery),
		ActualDelivery:    formatTimePtr(o.ActualDelivery),
		CreatedAt:         formatTime(o.CreatedAt),
		UpdatedAt:         formatTime(o.UpdatedAt),
	}
	if o.Cancellation != nil {
		resp.Cancellation = &CancellationInfo{
			Reason:         o.Cancellation.Reason,
			ReasonCategory: o.Cancellation.ReasonCategory,
			CancelledBy:    o.Cancellation.CancelledBy,
			CancelledAt:    formatTime(o.Cancellation.CancelledAt),
		}
	}
	if o.Return != nil {
		resp.Return = &ReturnInfo{
			ReasonCategory: o.Return.ReasonCategory,
			Description:    o.Return.Description,
			RequestedBy:    o.Return.RequestedBy,
			RequestedAt:    formatTime(o.Return.RequestedAt),
		}
	}
	return resp
}

// ListOrdersRequest HTTP订单列表请求
type ListOrdersRequest struct {
	CustomerID uint `form:"customer_id" binding:"omitempty"` // 员工查任意客户,客户忽略此参数
	Page       int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// ListOrdersResponse HTTP订单列表响应
type ListOrdersResponse struct {
	List  []*OrderResponse `json:"list"`
	Total int64            `json:"total" example:"100"`
	Page  int              `json:"page" example:"1"`
	Size  int              `json:"size" example:"20"`
}

// OrderHistoryEntry HTTP订单审计历史项
type OrderHistoryEntry struct {
	ID             uint   `json:"id" example:"1"`
	OrderNo        string `json:"order_no" example:"ORD-2026-0000001"`
	PreviousStatus string `json:"previous_status,omitempty" example:"已下单"` // 空 = 创建记录
	NewStatus      string `json:"new_status" example:"处理中"`
	ChangedBy      uint   `json:"changed_by" example:"1"`
	ChangedByRole  string `json:"changed_by_role" example:"admin"`
	Notes          string `json:"notes,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	CreatedAt      string `json:"created_at" example:"2026-01-15 10:30:00"`
}

// FromOrderHistory 将审计历史转换为HTTP响应
func FromOrderHistory(entries []*order.HistoryEntry) []OrderHistoryEntry {
	out := make([]OrderHistoryEntry, len(entries))
	for i, e := range entries {
		prev := ""
		if e.PreviousStatus != nil {
			prev = e.PreviousStatus.String()
		}
		out[i] = OrderHistoryEntry{
			ID:             e.ID,
			OrderNo:        e.OrderNo,
			PreviousStatus: prev,
			NewStatus:      e.NewStatus.String(),
			ChangedBy:      e.ChangedBy,
			ChangedByRole:  string(e.ChangedByRole),
			Notes:          e.Notes,
			TrackingNumber: e.TrackingNumber,
			CreatedAt:      formatTime(e.CreatedAt),
		}
	}
	return out
}
