package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"staffsync/internal/employee"
	"staffsync/internal/events"
	leaveerrors "staffsync/internal/leave/errors"
	"staffsync/internal/messaging/kafka"
	"staffsync/internal/metrics"
	"staffsync/internal/shared/apperror"
	"staffsync/internal/shared/audit"
	"staffsync/internal/shared/clock"
	"staffsync/internal/shared/contextutil"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID uint, req SubmitLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, reviewerID uint, requestID int64, outcome string) (LeaveResponse, error)
	GetBalanceSummary(ctx context.Context, employeeID uint) (BalanceSummaryResponse, error)
	ListForReview(ctx context.Context, reviewerID uint, filter ReviewFilter) ([]LeaveResponse, error)
	ListForEmployee(ctx context.Context, employeeID uint) (EmployeeLeavesResponse, error)
	GetByID(ctx context.Context, viewerID uint, requestID int64) (LeaveResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	audit     audit.Logger
	clock     clock.Clock
	isolation sql.IsolationLevel
	logger    *zap.Logger
}

// NewService wires the leave service. outboxRepo and auditLogger may be nil,
// in which case no events or audit entries are written.
func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	auditLogger audit.Logger,
	clk clock.Clock,
	isolation sql.IsolationLevel,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outboxRepo,
		audit:     auditLogger,
		clock:     clk,
		isolation: isolation,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, employeeID uint, req SubmitLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.Uint("employee_id", employeeID),
		zap.String("reason", req.Reason),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, s.failSubmission(leaveerrors.ErrStore.WithCause(err))
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// the row lock serialises concurrent submissions by the same employee
	empl, err := qtx.FindEmployeeForUpdate(ctx, employeeID)
	if err != nil {
		return LeaveResponse{}, s.failSubmission(mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound))
	}

	existing, err := qtx.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("submit leave load existing failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, s.failSubmission(mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound))
	}

	lr, err := Submit(*empl, SubmitInput{
		Reason:    req.Reason,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, existing, s.clock.Now())
	if err != nil {
		s.logger.Warn("submit leave rejected",
			zap.String("request_id", rid),
			zap.Uint("employee_id", employeeID),
			zap.Error(err),
		)
		return LeaveResponse{}, s.failSubmission(err)
	}

	if err := qtx.Create(ctx, &lr); err != nil {
		s.logger.Error("submit leave persist failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, s.failSubmission(mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound))
	}

	if s.outbox != nil {
		event := events.LeaveSubmittedEvent{
			EventType:  events.LeaveSubmittedEventType,
			RequestID:  rid,
			LeaveID:    lr.ID,
			EmployeeID: lr.EmployeeID,
			Username:   lr.Username,
			Reason:     string(lr.Reason),
			StartDate:  FormatDate(lr.StartDate),
			EndDate:    FormatDate(lr.EndDate),
			Days:       lr.Duration(),
			OccurredAt: lr.CreatedAt.UTC(),
		}
		if err := s.enqueue(ctx, tx, rid, lr.ID, event.EventType, events.LeaveSubmittedTopic, event); err != nil {
			return LeaveResponse{}, s.failSubmission(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, s.failSubmission(mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound))
	}

	metrics.RecordLeaveSubmission("created", lr.Duration())
	s.logger.Info("submit leave success",
		zap.String("request_id", rid),
		zap.Int64("leave_id", lr.ID),
		zap.Uint("employee_id", employeeID),
		zap.Int("days", lr.Duration()),
	)

	return mapToResponse(lr), nil
}

func (s *service) failSubmission(err error) error {
	result := apperror.CodeInternalError
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		result = appErr.Code
	}
	metrics.RecordLeaveSubmission(result, 0)
	return err
}

func (s *service) Decide(ctx context.Context, reviewerID uint, requestID int64, outcome string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide leave requested",
		zap.String("request_id", rid),
		zap.Int64("leave_id", requestID),
		zap.Uint("reviewer_id", reviewerID),
		zap.String("outcome", outcome),
	)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, leaveerrors.ErrStore.WithCause(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr, err := qtx.FindByID(ctx, requestID)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}
	if lr.EmployeeID == reviewerID {
		s.logger.Warn("decide leave on own request", zap.Int64("leave_id", requestID), zap.Uint("reviewer_id", reviewerID))
		return LeaveResponse{}, leaveerrors.ErrSelfDecision
	}

	decided, err := Decide(*lr, Status(outcome), s.clock.Now())
	if err != nil {
		s.logger.Warn("decide leave rejected",
			zap.Int64("leave_id", requestID),
			zap.String("from_status", string(lr.Status)),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	decided.RespondedBy = &reviewerID

	updated, err := qtx.UpdateStatusIfPending(ctx, decided.ID, decided.Status, *decided.RespondedAt, reviewerID)
	if err != nil {
		s.logger.Error("decide leave persist failed", zap.Int64("leave_id", requestID), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}
	if !updated {
		// another reviewer got there between our read and the update
		s.logger.Warn("decide leave lost race", zap.Int64("leave_id", requestID))
		return LeaveResponse{}, leaveerrors.ErrAlreadyHandled
	}

	if s.outbox != nil {
		event := events.LeaveDecidedEvent{
			EventType:  events.LeaveDecidedEventType,
			RequestID:  rid,
			LeaveID:    decided.ID,
			EmployeeID: decided.EmployeeID,
			Status:     string(decided.Status),
			DecidedBy:  reviewerID,
			Days:       decided.Duration(),
			OccurredAt: decided.RespondedAt.UTC(),
		}
		if err := s.enqueue(ctx, tx, rid, decided.ID, event.EventType, events.LeaveDecidedTopic, event); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}

	metrics.RecordLeaveDecision(string(decided.Status))
	if s.audit != nil {
		s.audit.Log(ctx, audit.Entry{
			Action:  "LEAVE_DECIDED",
			Message: "leave request " + strconv.FormatInt(decided.ID, 10) + " " + string(decided.Status),
			Meta: map[string]any{
				"leave_id":    decided.ID,
				"employee_id": decided.EmployeeID,
				"reviewer_id": reviewerID,
				"status":      string(decided.Status),
			},
		})
	}
	s.logger.Info("decide leave success",
		zap.String("request_id", rid),
		zap.Int64("leave_id", decided.ID),
		zap.String("status", string(decided.Status)),
	)

	return mapToResponse(decided), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, rid string, leaveID int64, eventType, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return leaveerrors.ErrStore.WithCause(err)
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   strconv.FormatInt(leaveID, 10),
		EventType:     eventType,
		Topic:         topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.Int64("leave_id", leaveID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}
	return nil
}

func (s *service) GetBalanceSummary(ctx context.Context, employeeID uint) (BalanceSummaryResponse, error) {
	empl, reqs, err := s.loadEmployeeRequests(ctx, employeeID)
	if err != nil {
		return BalanceSummaryResponse{}, err
	}
	return mapToBalanceResponse(empl.ID, Summarize(empl.LeaveBalance, reqs)), nil
}

func (s *service) ListForEmployee(ctx context.Context, employeeID uint) (EmployeeLeavesResponse, error) {
	empl, reqs, err := s.loadEmployeeRequests(ctx, employeeID)
	if err != nil {
		return EmployeeLeavesResponse{}, err
	}

	return EmployeeLeavesResponse{
		Requests: mapToListResponse(slices.Collect(ForEmployee(reqs, empl.Username))),
		Balance:  mapToBalanceResponse(empl.ID, Summarize(empl.LeaveBalance, reqs)),
	}, nil
}

func (s *service) loadEmployeeRequests(ctx context.Context, employeeID uint) (*employee.Employee, []LeaveRequest, error) {
	empl, err := s.repo.FindEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Warn("load employee failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, nil, mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound)
	}

	reqs, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("load leave requests failed", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, nil, mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound)
	}
	return empl, reqs, nil
}

func (s *service) ListForReview(ctx context.Context, reviewerID uint, filter ReviewFilter) ([]LeaveResponse, error) {
	if filter == "" {
		filter = ReviewPending
	}
	if !filter.IsValid() {
		return nil, leaveerrors.ErrInvalidReviewFilter
	}

	reviewer, err := s.repo.FindEmployee(ctx, reviewerID)
	if err != nil {
		return nil, mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound)
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}

	queue := FilterByReview(ForReviewer(all, reviewer.Username), filter)
	return mapToListResponse(slices.Collect(queue)), nil
}

// GetByID returns a request to its owner or to an HR reviewer.
func (s *service) GetByID(ctx context.Context, viewerID uint, requestID int64) (LeaveResponse, error) {
	lr, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveNotFound)
	}

	if lr.EmployeeID != viewerID {
		viewer, err := s.repo.FindEmployee(ctx, viewerID)
		if err != nil {
			return LeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrEmployeeNotFound)
		}
		if viewer.Role != employee.RoleHR {
			return LeaveResponse{}, leaveerrors.ErrReadForbidden
		}
	}

	return mapToResponse(*lr), nil
}

func mapToResponse(lr LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:          lr.ID,
		EmployeeID:  lr.EmployeeID,
		Username:    lr.Username,
		Reason:      string(lr.Reason),
		StartDate:   FormatDate(lr.StartDate),
		EndDate:     FormatDate(lr.EndDate),
		Days:        lr.Duration(),
		Status:      string(lr.Status),
		CreatedAt:   lr.CreatedAt.Format(time.RFC3339),
		RespondedBy: lr.RespondedBy,
	}
	if lr.RespondedAt != nil {
		v := lr.RespondedAt.Format(time.RFC3339)
		resp.RespondedAt = &v
	}
	return resp
}

func mapToListResponse(reqs []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(reqs))
	for i, lr := range reqs {
		resp[i] = mapToResponse(lr)
	}
	return resp
}

func mapToBalanceResponse(employeeID uint, sum BalanceSummary) BalanceSummaryResponse {
	return BalanceSummaryResponse{
		EmployeeID: employeeID,
		Granted:    sum.Granted,
		Used:       sum.Used,
		Remaining:  sum.Remaining,
	}
}
