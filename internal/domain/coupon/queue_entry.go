package coupon

import (
	"time"

	"github.com/google/uuid"
)

type QueueStatus string

const (
	QueueWaiting    QueueStatus = "WAITING"
	QueueProcessing QueueStatus = "PROCESSING"
	QueueCompleted  QueueStatus = "COMPLETED"
	QueueFailed     QueueStatus = "FAILED"
)

func (s QueueStatus) IsTerminal() bool {
	return s == QueueCompleted || s == QueueFailed
}

// QueueEntry is one account's place in a coupon's admission queue.
type QueueEntry struct {
	id           uuid.UUID
	accountID    uuid.UUID
	couponID     uuid.UUID
	status       QueueStatus
	position     int
	processedAt  *time.Time
	failedReason string
	createdAt    time.Time
}

func NewQueueEntry(accountID, couponID uuid.UUID, position int, createdAt time.Time) *QueueEntry {
	return &QueueEntry{
		id:        uuid.New(),
		accountID: accountID,
		couponID:  couponID,
		status:    QueueWaiting,
		position:  position,
		createdAt: createdAt,
	}
}

func RestoreQueueEntry(
	id, accountID, couponID uuid.UUID,
	status QueueStatus,
	position int,
	processedAt *time.Time,
	failedReason string,
	createdAt time.Time,
) *QueueEntry {
	return &QueueEntry{
		id:           id,
		accountID:    accountID,
		couponID:     couponID,
		status:       status,
		position:     position,
		processedAt:  processedAt,
		failedReason: failedReason,
		createdAt:    createdAt,
	}
}

func (e *QueueEntry) MarkProcessing() {
	e.status = QueueProcessing
}

func (e *QueueEntry) MarkCompleted(now time.Time) {
	e.status = QueueCompleted
	e.processedAt = &now
}

func (e *QueueEntry) MarkFailed(reason string, now time.Time) {
	e.status = QueueFailed
	e.failedReason = reason
	e.processedAt = &now
}

// ResetWaiting returns a PROCESSING entry to the queue after a transient
// failure so a later drain can retry it.
func (e *QueueEntry) ResetWaiting() {
	e.status = QueueWaiting
}

// UpdatePosition reassigns the waiting-line position; terminal entries keep
// the position they completed with.
func (e *QueueEntry) UpdatePosition(position int) {
	if e.status.IsTerminal() {
		return
	}
	e.position = position
}

func (e *QueueEntry) Clone() *QueueEntry {
	c := *e
	return &c
}

func (e *QueueEntry) ID() uuid.UUID          { return e.id }
func (e *QueueEntry) AccountID() uuid.UUID   { return e.accountID }
func (e *QueueEntry) CouponID() uuid.UUID    { return e.couponID }
func (e *QueueEntry) Status() QueueStatus    { return e.status }
func (e *QueueEntry) Position() int          { return e.position }
func (e *QueueEntry) ProcessedAt() *time.Time { return e.processedAt }
func (e *QueueEntry) FailedReason() string   { return e.failedReason }
func (e *QueueEntry) CreatedAt() time.Time   { return e.createdAt }
