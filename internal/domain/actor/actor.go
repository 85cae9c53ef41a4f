package actor

// Role 操作者角色
// 设计说明：
// 1. 角色由调用方（认证层）解析后显式传入，核心域不做任何用户目录查询
// 2. 状态机按目标状态检查角色（如仅管理员可发货）
type Role string

const (
	RoleAdmin    Role = "admin"    // 运营管理员
	RoleCustomer Role = "customer" // 客户本人
	RoleSystem   Role = "system"   // 系统任务（定时对账、种子数据）
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleSystem:
		return true
	}
	return false
}

// Actor 状态机操作者
// 所有状态流转都必须记录"谁、以什么角色"，写入审计历史
type Actor struct {
	UserID uint // 操作者账号ID
	Name   string
	Role   Role
}

// IsStaff 是否为内部人员（管理员/系统）
// 用于内部备注可见性等规则
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}
