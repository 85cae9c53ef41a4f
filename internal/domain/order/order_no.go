package order

import (
	"fmt"
	"regexp"
)

// 订单号设计
// 格式: ORD-{4位年份}-{7位序列}, 示例: ORD-2026-0000042
// 教学要点:
// 1. 年度序列由Redis INCR生成(见infrastructure层),保证全局唯一且单调
// 2. 序列宽度统一为7位:历史上生产方6位、校验方7位并存,这里收敛为7位
// 3. 业务单号与数据库自增ID分离,对外永远只暴露业务单号

// SequenceWidth 序列号固定宽度
const SequenceWidth = 7

var orderNoPattern = regexp.MustCompile(`^ORD-\d{4}-\d{7}$`)

// FormatOrderNo 格式化订单号
func FormatOrderNo(year int, seq int64) string {
	return fmt.Sprintf("ORD-%04d-%0*d", year, SequenceWidth, seq)
}

// ValidOrderNo 校验订单号格式
func ValidOrderNo(no string) bool {
	return orderNoPattern.MatchString(no)
}
