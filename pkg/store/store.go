// Package store is the record store of the dashboard: members, events,
// treasury transactions, dues statuses, attendance and receipts.
package store

import (
	"context"
	"errors"
	"time"

	"clubdash/models"
)

var (
	// ErrNotFound is returned when a mutation targets a row that no longer exists.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid wraps validation failures detected before any write.
	ErrInvalid = errors.New("invalid record")
)

// Store is the read/write contract the HTTP layer and the tools depend on.
// Create methods allocate the identifier inside the same write.
type Store interface {
	Ping(ctx context.Context) error
	LastUpdate() time.Time

	Members(ctx context.Context) ([]models.Member, error)
	Member(ctx context.Context, id int64) (models.Member, error)
	CreateMember(ctx context.Context, m *models.Member) error
	UpdateMember(ctx context.Context, m *models.Member) error
	DeleteMember(ctx context.Context, id int64) error

	Events(ctx context.Context) ([]models.Event, error)
	Event(ctx context.Context, id int64) (models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	UpdateEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error

	Transactions(ctx context.Context) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	DuesStatuses(ctx context.Context) ([]models.DuesStatus, error)
	SetDuesStatus(ctx context.Context, memberID int64, status models.PaymentStatus) error

	Attendance(ctx context.Context, eventID int64) ([]models.Attendance, error)
	RecordAttendance(ctx context.Context, eventID int64, presence map[int64]bool) (int, error)
	DeleteAttendance(ctx context.Context, eventID, memberID int64) error

	Receipts(ctx context.Context) ([]models.Receipt, error)
	FailedReceipts(ctx context.Context) ([]models.Receipt, error)
	ReceiptByFileName(ctx context.Context, name string) (models.Receipt, error)
	SaveReceipt(ctx context.Context, r *models.Receipt, t *models.Transaction) error
}
