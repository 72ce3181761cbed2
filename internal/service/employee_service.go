package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type employeeStore interface {
	ListByVendor(ctx context.Context, vendorID string, activeOnly bool) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, vendorID, email, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

// EmployeeRequest carries the mutable fields of a staff member.
type EmployeeRequest struct {
	VendorID string  `json:"vendor_id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Active   *bool   `json:"active,omitempty"`
}

// EmployeeService manages vendor staff records.
type EmployeeService struct {
	employees employeeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService creates a service instance.
func NewEmployeeService(employees employeeStore, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{employees: employees, validator: validate, logger: logger}
}

// List returns a vendor's staff, optionally only active ones.
func (s *EmployeeService) List(ctx context.Context, vendorID string, activeOnly bool) ([]models.Employee, error) {
	staff, err := s.employees.ListByVendor(ctx, vendorID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return staff, nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create validates and stores a new employee. Email, when present, must be
// unique within the vendor.
func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if err := s.checkEmail(ctx, req.VendorID, req.Email, ""); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	employee := &models.Employee{
		VendorID: req.VendorID,
		Name:     req.Name,
		Email:    req.Email,
		Active:   active,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("vendor_id", employee.VendorID),
	)
	return employee, nil
}

// Update replaces an employee's mutable fields. Deactivating removes the
// employee from future auto-assignment without touching existing bookings.
func (s *EmployeeService) Update(ctx context.Context, id string, req EmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee.VendorID != req.VendorID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee does not belong to this vendor")
	}
	if err := s.checkEmail(ctx, req.VendorID, req.Email, id); err != nil {
		return nil, err
	}

	employee.Name = req.Name
	employee.Email = req.Email
	if req.Active != nil {
		employee.Active = *req.Active
	}
	if err := s.employees.Update(ctx, employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Delete removes an employee. Bookings that referenced them keep their slot
// claim with the assignment cleared.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	return nil
}

func (s *EmployeeService) checkEmail(ctx context.Context, vendorID string, email *string, excludeID string) error {
	if email == nil || *email == "" {
		return nil
	}
	taken, err := s.employees.ExistsByEmail(ctx, vendorID, *email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee email")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "an employee with this email already exists")
	}
	return nil
}
