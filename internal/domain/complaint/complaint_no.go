package complaint

import (
	"fmt"
	"regexp"
)

// 投诉单号设计
// 格式: CMP-{4位年份}-{7位序列}, 示例: CMP-2026-0000007
// 序列宽度与订单号统一为7位(见订单域order_no.go的说明)

// SequenceWidth 序列号固定宽度
const SequenceWidth = 7

var complaintNoPattern = regexp.MustCompile(`^CMP-\d{4}-\d{7}$`)

// FormatComplaintNo 格式化投诉单号
func FormatComplaintNo(year int, seq int64) string {
	return fmt.Sprintf("CMP-%04d-%0*d", year, SequenceWidth, seq)
}

// ValidComplaintNo 校验投诉单号格式
func ValidComplaintNo(no string) bool {
	return complaintNoPattern.MatchString(no)
}
