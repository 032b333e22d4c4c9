package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"staffsync/internal/employee"
	"staffsync/internal/events"
	"staffsync/internal/leave"
	leaveerrors "staffsync/internal/leave/errors"
	mock_leave "staffsync/internal/leave/mock"
	"staffsync/internal/messaging/kafka"
	"staffsync/internal/shared/apperror"
	"staffsync/internal/shared/audit"
	"staffsync/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeOutboxRepository struct {
	created  []kafka.OutboxEvent
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, event); err != nil {
			return err
		}
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeAuditLogger struct {
	entries []audit.Entry
}

func (f *fakeAuditLogger) Log(ctx context.Context, entry audit.Entry) {
	f.entries = append(f.entries, entry)
}

type leaveServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *mock_leave.MockRepository
	outbox  *fakeOutboxRepository
	audit   *fakeAuditLogger
	clock   *clock.MockClock
	service leave.Service
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	repo := mock_leave.NewMockRepository(ctrl)
	outbox := &fakeOutboxRepository{}
	auditLogger := &fakeAuditLogger{}
	clk := clock.NewMockClock(time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local))

	return &leaveServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    repo,
		outbox:  outbox,
		audit:   auditLogger,
		clock:   clk,
		service: leave.NewService(db, repo, outbox, auditLogger, clk, sql.LevelReadCommitted),
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func employeeWithBalance(id uint, username string, role employee.Role, balance int) *employee.Employee {
	return &employee.Employee{ID: id, Username: username, Role: role, LeaveBalance: balance}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	req := leave.SubmitLeaveRequest{Reason: "Holiday", StartDate: "2025-06-02", EndDate: "2025-06-06"}

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindEmployeeForUpdate(gomock.Any(), uint(2)).
			Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil)
		deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return(nil, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, lr *leave.LeaveRequest) error {
				assert.Equal(t, leave.StatusPending, lr.Status)
				assert.Equal(t, leave.ReasonHoliday, lr.Reason)
				assert.Equal(t, "employee2", lr.Username)
				assert.Nil(t, lr.RespondedAt)
				lr.ID = 41
				return nil
			})

		resp, err := deps.service.Submit(ctx, 2, req)

		assert.NoError(t, err)
		assert.Equal(t, int64(41), resp.ID)
		assert.Equal(t, uint(2), resp.EmployeeID)
		assert.Equal(t, "Pending", resp.Status)
		assert.Equal(t, "2025-06-02", resp.StartDate)
		assert.Equal(t, "2025-06-06", resp.EndDate)
		assert.Equal(t, 4, resp.Days)
		assert.Nil(t, resp.RespondedAt)

		if assert.Len(t, deps.outbox.created, 1) {
			ev := deps.outbox.created[0]
			assert.Equal(t, events.LeaveSubmittedTopic, ev.Topic)
			assert.Equal(t, events.LeaveSubmittedEventType, ev.EventType)
			assert.Equal(t, "41", ev.AggregateID)
			assert.Equal(t, kafka.OutboxStatusPending, ev.Status)

			var payload events.LeaveSubmittedEvent
			assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, 4, payload.Days)
			assert.Equal(t, "Holiday", payload.Reason)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindEmployeeForUpdate(gomock.Any(), uint(2)).
			Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil)
		deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return([]leave.LeaveRequest{
			request(40, "employee2", leave.StatusPending, date(2025, time.June, 2), date(2025, time.June, 6)),
		}, nil)

		_, err := deps.service.Submit(ctx, 2, leave.SubmitLeaveRequest{
			Reason:    "Sick",
			StartDate: "2025-06-10",
			EndDate:   "2025-06-17",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Equal(t, 422, apperror.ToHTTP(err).Status)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative employee not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindEmployeeForUpdate(gomock.Any(), uint(99)).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Submit(ctx, 99, req)

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative serialization failure on commit", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindEmployeeForUpdate(gomock.Any(), uint(2)).
			Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil)
		deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return(nil, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		_, err := deps.service.Submit(ctx, 2, req)

		assert.ErrorIs(t, err, leaveerrors.ErrConcurrentModification)
		assert.Equal(t, 409, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative outbox failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			return errors.New("outbox_events does not exist")
		}

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindEmployeeForUpdate(gomock.Any(), uint(2)).
			Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil)
		deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return(nil, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		_, err := deps.service.Submit(ctx, 2, req)

		assert.ErrorIs(t, err, leaveerrors.ErrStore)
		assert.Equal(t, 500, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Decide(t *testing.T) {
	ctx := context.Background()
	pending := func() *leave.LeaveRequest {
		lr := request(41, "employee2", leave.StatusPending, date(2025, time.June, 2), date(2025, time.June, 6))
		lr.EmployeeID = 2
		return &lr
	}

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		now := deps.clock.Now()

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(pending(), nil)
		deps.repo.EXPECT().UpdateStatusIfPending(gomock.Any(), int64(41), leave.StatusAccepted, now, uint(9)).
			Return(true, nil)

		resp, err := deps.service.Decide(ctx, 9, 41, "Accepted")

		assert.NoError(t, err)
		assert.Equal(t, "Accepted", resp.Status)
		if assert.NotNil(t, resp.RespondedAt) {
			assert.Equal(t, now.Format(time.RFC3339), *resp.RespondedAt)
		}
		if assert.NotNil(t, resp.RespondedBy) {
			assert.Equal(t, uint(9), *resp.RespondedBy)
		}
		if assert.Len(t, deps.outbox.created, 1) {
			assert.Equal(t, events.LeaveDecidedTopic, deps.outbox.created[0].Topic)
		}
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, "LEAVE_DECIDED", deps.audit.entries[0].Action)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already handled", func(t *testing.T) {
		for _, from := range []leave.Status{leave.StatusAccepted, leave.StatusDeclined} {
			for _, outcome := range []string{"Accepted", "Declined"} {
				deps := setupLeaveServiceTest(t)
				expectTx(t, deps.sqlMock, false)

				lr := pending()
				lr.Status = from
				deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
				deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(lr, nil)

				_, err := deps.service.Decide(ctx, 9, 41, outcome)

				assert.ErrorIs(t, err, leaveerrors.ErrAlreadyHandled)
				assert.Equal(t, 409, apperror.ToHTTP(err).Status)
				assert.Empty(t, deps.audit.entries)
				assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
			}
		}
	})

	t.Run("negative concurrent decision", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(pending(), nil)
		deps.repo.EXPECT().UpdateStatusIfPending(gomock.Any(), int64(41), leave.StatusDeclined, gomock.Any(), uint(9)).
			Return(false, nil)

		_, err := deps.service.Decide(ctx, 9, 41, "Declined")

		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyHandled)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative own request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(pending(), nil)

		_, err := deps.service.Decide(ctx, 2, 41, "Accepted")

		assert.ErrorIs(t, err, leaveerrors.ErrSelfDecision)
		assert.Equal(t, 403, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid outcome", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(pending(), nil)

		_, err := deps.service.Decide(ctx, 9, 41, "Maybe")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidOutcome)
		assert.Equal(t, 400, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(77)).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Decide(ctx, 9, 77, "Accepted")

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative store failure keeps cause", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		cause := errors.New("connection reset by peer")

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(nil, cause)

		_, err := deps.service.Decide(ctx, 9, 41, "Accepted")

		assert.ErrorIs(t, err, leaveerrors.ErrStore)
		assert.ErrorIs(t, err, cause)
		assert.True(t, apperror.HasCode(err, apperror.CodeInternalError))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_GetBalanceSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("declined request is given back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		first := request(41, "employee2", leave.StatusPending, date(2025, time.June, 2), date(2025, time.June, 6))

		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(2)).
			Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil).Times(2)
		gomock.InOrder(
			deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return([]leave.LeaveRequest{first}, nil),
			deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).DoAndReturn(
				func(ctx context.Context, id uint) ([]leave.LeaveRequest, error) {
					declined := first
					declined.Status = leave.StatusDeclined
					return []leave.LeaveRequest{declined}, nil
				}),
		)

		before, err := deps.service.GetBalanceSummary(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, leave.BalanceSummaryResponse{EmployeeID: 2, Granted: 10, Used: 4, Remaining: 6}, before)

		after, err := deps.service.GetBalanceSummary(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, leave.BalanceSummaryResponse{EmployeeID: 2, Granted: 10, Used: 0, Remaining: 10}, after)
	})

	t.Run("negative employee not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(5)).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetBalanceSummary(ctx, 5)

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.Equal(t, 404, apperror.ToHTTP(err).Status)
	})
}

func TestLeaveService_ListForReview(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to pending and hides own requests", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(9)).
			Return(employeeWithBalance(9, "employee2", employee.RoleHR, 20), nil)
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(reviewFixture(), nil)

		resp, err := deps.service.ListForReview(ctx, 9, "")

		assert.NoError(t, err)
		got := make([]int64, 0, len(resp))
		for _, r := range resp {
			assert.NotEqual(t, "employee2", r.Username)
			assert.Equal(t, "Pending", r.Status)
			got = append(got, r.ID)
		}
		assert.Equal(t, []int64{2, 5}, got)
	})

	t.Run("all keeps priority order", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(9)).
			Return(employeeWithBalance(9, "hr", employee.RoleHR, 20), nil)
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(reviewFixture(), nil)

		resp, err := deps.service.ListForReview(ctx, 9, leave.ReviewAll)

		assert.NoError(t, err)
		statuses := make([]string, 0, len(resp))
		for _, r := range resp {
			statuses = append(statuses, r.Status)
		}
		assert.Equal(t, []string{"Pending", "Pending", "Accepted", "Accepted", "Declined"}, statuses)
	})

	t.Run("negative invalid filter", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.ListForReview(ctx, 9, "archived")

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidReviewFilter)
	})
}

func TestLeaveService_ListForEmployee(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	reqs := []leave.LeaveRequest{
		request(6, "employee2", leave.StatusAccepted, date(2025, time.June, 20), date(2025, time.June, 21)),
		request(1, "employee2", leave.StatusDeclined, date(2025, time.June, 1), date(2025, time.June, 3)),
		request(4, "employee2", leave.StatusPending, date(2025, time.August, 1), date(2025, time.August, 5)),
	}
	deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(2)).
		Return(employeeWithBalance(2, "employee2", employee.RoleEmployee, 10), nil)
	deps.repo.EXPECT().FindByEmployee(gomock.Any(), uint(2)).Return(reqs, nil)

	resp, err := deps.service.ListForEmployee(context.Background(), 2)

	assert.NoError(t, err)
	if assert.Len(t, resp.Requests, 3) {
		assert.Equal(t, int64(1), resp.Requests[0].ID)
		assert.Equal(t, int64(6), resp.Requests[1].ID)
		assert.Equal(t, int64(4), resp.Requests[2].ID)
	}
	assert.Equal(t, leave.BalanceSummaryResponse{EmployeeID: 2, Granted: 10, Used: 5, Remaining: 5}, resp.Balance)
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()
	owned := func() *leave.LeaveRequest {
		lr := request(41, "employee2", leave.StatusPending, date(2025, time.June, 2), date(2025, time.June, 6))
		lr.EmployeeID = 2
		return &lr
	}

	t.Run("success owner", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(owned(), nil)

		resp, err := deps.service.GetByID(ctx, 2, 41)

		assert.NoError(t, err)
		assert.Equal(t, int64(41), resp.ID)
	})

	t.Run("success reviewer", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(owned(), nil)
		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(9)).
			Return(employeeWithBalance(9, "hr", employee.RoleHR, 20), nil)

		_, err := deps.service.GetByID(ctx, 9, 41)

		assert.NoError(t, err)
	})

	t.Run("negative other employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.EXPECT().FindByID(gomock.Any(), int64(41)).Return(owned(), nil)
		deps.repo.EXPECT().FindEmployee(gomock.Any(), uint(3)).
			Return(employeeWithBalance(3, "employee3", employee.RoleEmployee, 10), nil)

		_, err := deps.service.GetByID(ctx, 3, 41)

		assert.ErrorIs(t, err, leaveerrors.ErrReadForbidden)
	})
}
