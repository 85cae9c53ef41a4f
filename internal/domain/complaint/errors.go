package complaint

import (
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// 投诉领域错误定义
var (
	// ErrComplaintNotFound 投诉不存在(不可重试)
	ErrComplaintNotFound = apperrors.New(apperrors.ErrCodeComplaintNotFound, "投诉不存在")

	// ErrIllegalTransition 非法的状态流转(不可重试,需重新读取状态)
	ErrIllegalTransition = apperrors.New(apperrors.ErrCodeIllegalTransition, "投诉当前状态不允许此操作")

	// ErrConcurrentModification 乐观并发冲突(重读后可重试)
	ErrConcurrentModification = apperrors.New(apperrors.ErrCodeConcurrentModification, "投诉已被其他操作修改,请刷新后重试")

	// ErrComplaintClosed 已关闭的投诉禁止指派/评论
	ErrComplaintClosed = apperrors.New(apperrors.ErrCodeComplaintClosed, "投诉已关闭")

	// ErrNotClosed 满意度评分仅限已关闭的投诉
	ErrNotClosed = apperrors.New(apperrors.ErrCodeBusinessError, "仅已关闭的投诉可以评分")

	// ErrMissingNotes 状态流转必须附带说明
	ErrMissingNotes = apperrors.New(apperrors.ErrCodeMissingReason, "状态流转必须填写说明")

	// ErrMissingResolutionNotes 解决投诉必须填写解决方案
	ErrMissingResolutionNotes = apperrors.New(apperrors.ErrCodeMissingReason, "解决投诉必须填写解决方案")

	// ErrMissingReason 重开理由不能为空
	ErrMissingReason = apperrors.New(apperrors.ErrCodeMissingReason, "重开投诉必须填写理由")

	// 参数校验
	ErrInvalidCategory     = apperrors.New(apperrors.ErrCodeInvalidParams, "投诉类别不合法")
	ErrInvalidPriority     = apperrors.New(apperrors.ErrCodeInvalidParams, "投诉优先级不合法")
	ErrInvalidComplaint    = apperrors.New(apperrors.ErrCodeInvalidParams, "投诉主题与描述不能为空")
	ErrInvalidAssignee     = apperrors.New(apperrors.ErrCodeInvalidParams, "处理人不能为空")
	ErrInvalidComment      = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能为空")
	ErrInvalidSatisfaction = apperrors.New(apperrors.ErrCodeInvalidParams, "满意度评分必须在1到5之间")

	// ErrComplaintNoGenerate 投诉单号生成失败
	ErrComplaintNoGenerate = apperrors.New(apperrors.ErrCodeInternal, "投诉单号生成失败")
)
