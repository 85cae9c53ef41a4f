package order

import (
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在(不可重试)
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrIllegalTransition 非法的状态流转
	// 不可重试:调用方必须重新读取订单状态后决定下一步
	ErrIllegalTransition = apperrors.New(apperrors.ErrCodeIllegalTransition, "订单当前状态不允许此流转")

	// ErrRoleNotAllowed 当前角色无权执行该流转
	ErrRoleNotAllowed = apperrors.New(apperrors.ErrCodeForbidden, "当前角色无权执行此操作")

	// ErrMissingTrackingNumber 发货必须携带运单号
	ErrMissingTrackingNumber = apperrors.New(apperrors.ErrCodeMissingTrackingNumber, "发货必须填写运单号")

	// ErrMissingReason 取消理由为空或过短
	ErrMissingReason = apperrors.New(apperrors.ErrCodeMissingReason, "取消理由不能为空且不得少于最小长度")

	// ErrConcurrentModification 乐观并发冲突
	// 可重试:重新读取订单后以相同意图重试
	ErrConcurrentModification = apperrors.New(apperrors.ErrCodeConcurrentModification, "订单已被其他操作修改,请刷新后重试")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrAmountMismatch 金额不变式被破坏
	ErrAmountMismatch = apperrors.New(apperrors.ErrCodeBusinessError, "订单金额与分项之和不一致")

	// ErrOrderNoGenerate 订单号生成失败
	ErrOrderNoGenerate = apperrors.New(apperrors.ErrCodeInternal, "订单号生成失败")

	// 退货流错误
	ErrReturnNotDelivered    = apperrors.New(apperrors.ErrCodeIllegalTransition, "仅已送达的订单可以申请退货")
	ErrReturnNoItems         = apperrors.New(apperrors.ErrCodeInvalidReturnRequest, "退货申请至少选择一件商品")
	ErrReturnQuantityInvalid = apperrors.New(apperrors.ErrCodeInvalidReturnRequest, "退货数量必须在1到购买数量之间")
	ErrReturnItemNotFound    = apperrors.New(apperrors.ErrCodeInvalidReturnRequest, "退货申请包含不属于本订单的商品")
	ErrReturnDescTooShort    = apperrors.New(apperrors.ErrCodeMissingReason, "退货说明过短")
)
