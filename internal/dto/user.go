package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin supervisor teamleader employee warehouse_admin"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin supervisor teamleader employee warehouse_admin"`
}

// ResetPasswordResponse 重置密码响应（返回临时密码）
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
