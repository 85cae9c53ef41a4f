package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// 退货子流程(ReturnWorkflow)
// 教学要点:
// 1. 只有Delivered状态可以发起退货,这是状态机的一条普通边,
//    但载荷校验比普通流转复杂(按明细行校验数量上界)
// 2. 退货裁决(接受/拒绝/完成)走ApplyTransition的人工流转,核心不自动裁决

// DefaultReturnDescriptionMinLen 退货说明最小长度(可由配置覆盖)
const DefaultReturnDescriptionMinLen = 20

// ReturnItemRequest 单个明细行的退货申请
type ReturnItemRequest struct {
	ItemID   uint   // 订单明细ID
	Quantity int    // 退货数量, 1..item.Quantity
	Reason   string // 行级退货原因
}

// RequestReturn 发起部分退货申请
// 校验:
//   - 订单必须处于Delivered
//   - 至少选择一件商品,每行数量在[1, 购买数量]内
//   - 说明不少于最小长度(默认20字符)
//
// 成功后:标记所选明细ReturnRequested/ReturnQuantity,订单转ReturnRequested,
// 返回一条notes汇总了商品与数量的审计历史
func (o *Order) RequestReturn(items []ReturnItemRequest, reasonCategory, description string, by actor.Actor, descMinLen int) (*HistoryEntry, error) {
	if o.Status != OrderStatusDelivered {
		return nil, ErrReturnNotDelivered
	}
	if len(items) == 0 {
		return nil, ErrReturnNoItems
	}
	if descMinLen <= 0 {
		descMinLen = DefaultReturnDescriptionMinLen
	}
	if len([]rune(description)) < descMinLen {
		return nil, ErrReturnDescTooShort
	}

	// 先全量校验再落标记,避免改到一半发现非法数量
	byID := make(map[uint]*OrderItem, len(o.Items))
	for i := range o.Items {
		byID[o.Items[i].ID] = &o.Items[i]
	}
	for _, req := range items {
		item, ok := byID[req.ItemID]
		if !ok {
			return nil, ErrReturnItemNotFound
		}
		if req.Quantity <= 0 || req.Quantity > item.Quantity {
			return nil, ErrReturnQuantityInvalid
		}
	}

	now := time.Now()
	summary := make([]string, 0, len(items))
	for _, req := range items {
		item := byID[req.ItemID]
		item.ReturnRequested = true
		item.ReturnQuantity = req.Quantity
		item.ReturnReason = req.Reason
		summary = append(summary, fmt.Sprintf("%s x%d", item.SKU, req.Quantity))
	}

	previous := o.Status
	o.Status = OrderStatusReturnRequested
	o.UpdatedAt = now
	o.Return = &ReturnInfo{
		ReasonCategory: reasonCategory,
		Description:    description,
		RequestedBy:    by.UserID,
		RequestedAt:    now,
	}

	notes := fmt.Sprintf("退货申请[%s]: %s", reasonCategory, strings.Join(summary, ", "))
	return newTransitionEntry(o, previous, by, notes, "", now), nil
}
