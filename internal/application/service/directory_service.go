package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
)

// DirectoryService manages employees and the department head registry
type DirectoryService interface {
	port.Directory

	RegisterEmployee(ctx context.Context, emp *entity.Employee) error
	ListEmployees(ctx context.Context) ([]*entity.Employee, error)

	// AssignHead makes the employee head of department, replacing any previous head
	AssignHead(ctx context.Context, department string, employeeID int64) (*entity.DepartmentHead, error)
	RemoveHead(ctx context.Context, department string) error
	ListHeads(ctx context.Context) ([]*entity.DepartmentHead, error)
}

type directoryServiceImpl struct {
	employees port.EmployeeRepository
	heads     port.DepartmentHeadRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(
	employees port.EmployeeRepository,
	heads port.DepartmentHeadRepository,
	txManager port.TransactionManager,
	logger Logger,
) DirectoryService {
	return &directoryServiceImpl{
		employees: employees,
		heads:     heads,
		txManager: txManager,
		logger:    logger,
	}
}

// Employee returns ErrNotFound for an unknown ID
func (s *directoryServiceImpl) Employee(ctx context.Context, id int64) (*entity.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: employee %d", entity.ErrNotFound, id)
	}
	return emp, nil
}

func (s *directoryServiceImpl) DepartmentHead(ctx context.Context, department string) (*entity.DepartmentHead, error) {
	if department == "" {
		return nil, nil
	}
	head, err := s.heads.GetByDepartment(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("get department head: %w", err)
	}
	return head, nil
}

func (s *directoryServiceImpl) Manager(ctx context.Context) (*entity.Employee, error) {
	manager, err := s.employees.GetManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("get manager: %w", err)
	}
	return manager, nil
}

func (s *directoryServiceImpl) RegisterEmployee(ctx context.Context, emp *entity.Employee) error {
	emp.Name = strings.TrimSpace(emp.Name)
	emp.Department = strings.TrimSpace(emp.Department)
	if emp.Name == "" || emp.Department == "" {
		return fmt.Errorf("%w: employee name and department are required", entity.ErrValidation)
	}
	if emp.Balance < 0 {
		return fmt.Errorf("%w: balance cannot be negative", entity.ErrValidation)
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		s.logger.Error("Failed to register employee", "error", err, "name", emp.Name)
		return fmt.Errorf("create employee: %w", err)
	}

	s.logger.Info("Employee registered",
		"employee_id", emp.ID,
		"department", emp.Department,
		"job_grade", emp.JobGrade,
	)
	return nil
}

func (s *directoryServiceImpl) ListEmployees(ctx context.Context) ([]*entity.Employee, error) {
	return s.employees.List(ctx)
}

func (s *directoryServiceImpl) AssignHead(ctx context.Context, department string, employeeID int64) (*entity.DepartmentHead, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, fmt.Errorf("%w: department is required", entity.ErrValidation)
	}

	var assigned *entity.DepartmentHead
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		emp, err := s.Employee(txCtx, employeeID)
		if err != nil {
			return err
		}

		head := &entity.DepartmentHead{Department: department, EmployeeID: emp.ID}
		if err := s.heads.Upsert(txCtx, head); err != nil {
			return fmt.Errorf("assign head: %w", err)
		}

		head.EmployeeName = emp.Name
		head.NotificationAddress = emp.NotificationAddress
		assigned = head
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to assign department head", "error", err, "department", department, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("Department head assigned", "department", department, "employee_id", employeeID)
	return assigned, nil
}

func (s *directoryServiceImpl) RemoveHead(ctx context.Context, department string) error {
	removed, err := s.heads.Delete(ctx, department)
	if err != nil {
		return fmt.Errorf("remove head: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: no head assigned to department %q", entity.ErrNotFound, department)
	}

	s.logger.Info("Department head removed", "department", department)
	return nil
}

func (s *directoryServiceImpl) ListHeads(ctx context.Context) ([]*entity.DepartmentHead, error) {
	return s.heads.List(ctx)
}
