package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// RegisterRequest 注册账号请求（管理员操作，同时建立员工档案）
type RegisterRequest struct {
	Username   string `json:"username"    binding:"required,min=3,max=50"`
	Password   string `json:"password"    binding:"required,min=8,max=72"`
	Role       string `json:"role"        binding:"required,oneof=admin supervisor teamleader employee warehouse_admin"`
	EmployeeID string `json:"employee_id" binding:"omitempty,max=20"`
	Name       string `json:"name"        binding:"required,max=100"`
	Department string `json:"department"  binding:"omitempty,max=100"`
	Position   string `json:"position"    binding:"omitempty,max=100"`
}
