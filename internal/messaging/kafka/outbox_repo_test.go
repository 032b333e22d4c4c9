package kafka_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"staffsync/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            "9b2f6f0e-5f1a-4a53-9a64-2c1f3f1e8b10",
		RequestID:     "req-1",
		AggregateType: "leave_request",
		AggregateID:   "41",
		EventType:     "leave_submitted",
		Topic:         "staffsync.leave.submitted.v1",
		Payload:       []byte(`{"leave_id":41}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success inside transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		ev := validEvent()
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs(ev.ID, ev.RequestID, ev.AggregateType, ev.AggregateID, ev.EventType, ev.Topic, ev.Payload, ev.Status).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.BeginTx(ctx, nil)
		assert.NoError(t, err)

		err = kafka.NewOutboxRepository(db).WithTx(tx).Create(ctx, ev)
		assert.NoError(t, err)
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative invalid event never reaches the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		ev := validEvent()
		ev.Payload = nil

		err = kafka.NewOutboxRepository(db).Create(ctx, ev)
		assert.EqualError(t, err, "outbox payload is required")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	due := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow(
		"9b2f6f0e-5f1a-4a53-9a64-2c1f3f1e8b10", "req-1", "leave_request", "41", "leave_decided",
		"staffsync.leave.decided.v1", []byte(`{"leave_id":41}`), kafka.OutboxStatusFailed, 2, due,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10).
		WillReturnRows(rows)

	got, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)

	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "41", got[0].AggregateID)
		assert.Equal(t, "req-1", got[0].RequestID)
		assert.Equal(t, 2, got[0].RetryCount)
		assert.Equal(t, due, got[0].NextRetryAt)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Mark(t *testing.T) {
	ctx := context.Background()

	t.Run("sent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WithArgs("evt-1", kafka.OutboxStatusSent).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, kafka.NewOutboxRepository(db).MarkSent(ctx, "evt-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("INTERVAL '15 seconds'")).
			WithArgs("evt-1", kafka.OutboxStatusFailed, "broker unavailable", kafka.MaxDeliveryAttempts, kafka.OutboxStatusDead).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(ctx, "evt-1", "broker unavailable"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WillReturnError(errors.New("connection refused"))

		assert.Error(t, kafka.NewOutboxRepository(db).MarkSent(ctx, "evt-1"))
	})
}

func TestEnsureOutboxTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS outbox_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, kafka.EnsureOutboxTable(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	ev := validEvent()
	ev.Status = "queued"

	assert.EqualError(t, kafka.ValidateOutboxEvent(ev), "invalid outbox status: queued")
	assert.NoError(t, kafka.ValidateOutboxEvent(validEvent()))
}
