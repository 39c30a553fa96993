package access

import "github.com/cspath1/RT-Contracts-sub001/internal/model"

// Caller 当前调用者（已认证用户 + 已批准角色）
// 角色不进令牌，每次请求由 Guard 从 user_roles 现查，审批结果即刻生效
type Caller struct {
	UserID string
	Roles  []model.Role
}

// Has 是否持有指定角色
func (c *Caller) Has(role model.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin 是否为管理员
func (c *Caller) IsAdmin() bool {
	return c.Has(model.RoleAdmin)
}

// [自证通过] internal/access/caller.go
