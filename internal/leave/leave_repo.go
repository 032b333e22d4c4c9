package leave

import (
	"context"
	"database/sql"
	"time"

	"staffsync/internal/employee"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindEmployee(ctx context.Context, id uint) (*employee.Employee, error)
	FindEmployeeForUpdate(ctx context.Context, id uint) (*employee.Employee, error)
	FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id int64) (*LeaveRequest, error)
	Create(ctx context.Context, r *LeaveRequest) error
	// UpdateStatusIfPending reports false when the request was no longer
	// Pending, leaving the row untouched.
	UpdateStatusIfPending(ctx context.Context, id int64, status Status, respondedAt time.Time, respondedBy uint) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs gorm on the service's *sql.Tx when one is bound.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) FindEmployee(ctx context.Context, id uint) (*employee.Employee, error) {
	var empl employee.Employee
	if err := r.conn(ctx).First(&empl, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "find employee %d", id)
	}
	return &empl, nil
}

func (r *repository) FindEmployeeForUpdate(ctx context.Context, id uint) (*employee.Employee, error) {
	var empl employee.Employee
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrapf(err, "lock employee %d", id)
	}
	return &empl, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uint) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find leave requests of employee %d", employeeID)
	}
	return reqs, nil
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	if err := r.conn(ctx).Order("id ASC").Find(&reqs).Error; err != nil {
		return nil, errors.Wrap(err, "find all leave requests")
	}
	return reqs, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*LeaveRequest, error) {
	var req LeaveRequest
	if err := r.conn(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "find leave request %d", id)
	}
	return &req, nil
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return errors.Wrap(r.conn(ctx).Create(req).Error, "insert leave request")
}

func (r *repository) UpdateStatusIfPending(ctx context.Context, id int64, status Status, respondedAt time.Time, respondedBy uint) (bool, error) {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":       status,
			"responded_at": respondedAt,
			"responded_by": respondedBy,
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "update status of leave request %d", id)
	}
	return res.RowsAffected == 1, nil
}
