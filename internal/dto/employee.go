package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工档案请求
type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,max=20"`
	Name       string `json:"name"        binding:"required,max=100"`
	Department string `json:"department"  binding:"required,max=100"`
	Position   string `json:"position"    binding:"omitempty,max=100"`
}

// UpdateEmployeeRequest 更新员工档案请求
type UpdateEmployeeRequest struct {
	Name       *string `json:"name"       binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Position   *string `json:"position"   binding:"omitempty,max=100"`
	Status     *string `json:"status"     binding:"omitempty,oneof=Active Inactive"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	Department string `form:"department"`
	Status     string `form:"status" binding:"omitempty,oneof=Active Inactive"`
}

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// DepartmentDetailResponse 部门详细信息响应
type DepartmentDetailResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	EmployeeCount int64  `json:"employee_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
