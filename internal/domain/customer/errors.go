package customer

import (
	apperrors "github.com/xiebiao/tradeops/pkg/errors"
)

// 客户聚合领域错误定义
var (
	// ErrCustomerNotFound 客户画像不存在(尚未对账过)
	ErrCustomerNotFound = apperrors.New(apperrors.ErrCodeCustomerNotFound, "客户画像不存在")

	// ErrReconcileSourceUnavailable 事实源读取失败,本轮对账整体放弃
	ErrReconcileSourceUnavailable = apperrors.New(apperrors.ErrCodeReconcileError, "事实源读取失败,对账中止")
)
