package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/config"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/api/handler"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/api/router"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/events"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/jobs"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/database"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/jwt"
	applogger "github.com/codebylorence/secureattend-2.0-sub001/pkg/logger"
	"github.com/codebylorence/secureattend-2.0-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 解析排班时区（配置校验已保证有效）
	loc, err := cfg.Schedule.Location()
	if err != nil {
		logger.Fatal("排班时区解析失败", zap.Error(err))
	}

	// 4. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与速率限制将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 初始化 JWT 管理器与事件中心
	jwtMgr := jwt.NewManager(&cfg.Auth)
	hub := events.NewHub()

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, hub, loc, logger)
	h := handler.NewHandler(svc, hub)

	// 7.1 确保默认管理员存在
	if err := service.SeedDefaultAdmin(context.Background(), &cfg.Admin, repo, logger); err != nil {
		logger.Fatal("默认管理员初始化失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动后台任务：排班窗口滚动
	jobCtx, jobCancel := context.WithCancel(context.Background())
	regenJob := jobs.NewRegenerateJob(svc.EmployeeSchedule, cfg.Schedule.RegenerateInterval, logger)
	go regenJob.Run(jobCtx)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	jobCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
