package user

import (
	"time"

	"github.com/xiebiao/tradeops/internal/domain/actor"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，承载登录身份与角色
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. Role决定订单/投诉操作的权限（admin才能推进履约状态）
// 4. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      actor.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string, role actor.Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Actor 转换为操作者身份(供状态机做权限判断)
func (u *User) Actor() actor.Actor {
	return actor.Actor{
		UserID: u.ID,
		Name:   u.Nickname,
		Role:   u.Role,
	}
}

// CustomerID 客户身份的业务ID
// 约定:customer角色的客户ID就是用户ID;员工账号没有客户身份,返回0
func (u *User) CustomerID() uint {
	if u.Role == actor.RoleCustomer {
		return u.ID
	}
	return 0
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
