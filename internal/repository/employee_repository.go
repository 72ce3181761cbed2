package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
)

// EmployeeRepository manages vendor staff records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository builds the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, vendor_id, name, email, active, created_at, updated_at`

// ListByVendor returns a vendor's employees. With activeOnly set, inactive
// staff are filtered out. Ordering is by creation time then id, which is
// also the deterministic scan order for auto-assignment.
func (r *EmployeeRepository) ListByVendor(ctx context.Context, vendorID string, activeOnly bool) ([]models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE vendor_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, vendorID); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// FindByID returns one employee or sql.ErrNoRows.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}

// ExistsByEmail reports whether another employee of the vendor already uses
// the email.
func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, vendorID, email, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM employees WHERE vendor_id = $1 AND email = $2 AND id <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, vendorID, email, excludeID); err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return exists, nil
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	const query = `
INSERT INTO employees (id, vendor_id, name, email, active, created_at, updated_at)
VALUES (:id, :vendor_id, :name, :email, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// Update rewrites name, email and active flag.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE employees SET name = :name, email = :email, active = :active, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an employee. Bookings referencing it keep running with a
// nulled employee_id (ON DELETE SET NULL).
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
