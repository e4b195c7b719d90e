package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"clubdash/models"
	"clubdash/pkg/club"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the Store backed by a gorm connection (Postgres or sqlite).
type Gorm struct {
	db       *gorm.DB
	log      *slog.Logger
	now      func() time.Time
	onChange func(relation, op string)

	mu   sync.RWMutex
	last time.Time
}

type Option func(*Gorm)

func WithLogger(l *slog.Logger) Option { return func(s *Gorm) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Gorm) { s.now = now } }

// WithChangeHook registers a callback run after every successful mutation.
func WithChangeHook(fn func(relation, op string)) Option {
	return func(s *Gorm) { s.onChange = fn }
}

func NewGorm(db *gorm.DB, opts ...Option) *Gorm {
	s := &Gorm{
		db:  db,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.last = s.now()
	return s
}

var _ Store = (*Gorm)(nil)

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// LastUpdate is the time of the latest successful mutation made through s,
// or the time s was created.
func (s *Gorm) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Gorm) touch(relation, op string) {
	s.mu.Lock()
	s.last = s.now()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(relation, op)
	}
}

// nextID reads the id column of model inside tx and returns the next free id.
func nextID(tx *gorm.DB, model any) (int64, error) {
	var ids []sql.NullInt64
	if err := tx.Model(model).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("read ids: %w", err)
	}
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		if id.Valid {
			values = append(values, id.Int64)
		}
	}
	return club.NextID(values), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---- members ----

func (s *Gorm) Members(ctx context.Context) ([]models.Member, error) {
	var out []models.Member
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return out, nil
}

func (s *Gorm) Member(ctx context.Context, id int64) (models.Member, error) {
	var m models.Member
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return models.Member{}, notFound(err)
	}
	return m, nil
}

func (s *Gorm) CreateMember(ctx context.Context, m *models.Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.Member{})
		if err != nil {
			return err
		}
		m.ID = id
		return tx.Create(m).Error
	})
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	s.touch("members", "create")
	return nil
}

func (s *Gorm) UpdateMember(ctx context.Context, m *models.Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Member{}).Where("id = ?", m.ID).Updates(map[string]any{
			"external_code": m.ExternalCode,
			"name":          m.Name,
			"phone":         m.Phone,
			"email":         m.Email,
			"status":        m.Status,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(m, "id = ?", m.ID).Error
	})
	if err != nil {
		return fmt.Errorf("update member %d: %w", m.ID, err)
	}
	s.touch("members", "update")
	return nil
}

// DeleteMember removes the member together with its dues status and
// attendance rows.
func (s *Gorm) DeleteMember(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Member{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.DuesStatus{}, "member_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Attendance{}, "member_id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	s.touch("members", "delete")
	return nil
}

// ---- events ----

func (s *Gorm) Events(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	if err := s.db.WithContext(ctx).Order("date").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return out, nil
}

func (s *Gorm) Event(ctx context.Context, id int64) (models.Event, error) {
	var e models.Event
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return models.Event{}, notFound(err)
	}
	return e, nil
}

func (s *Gorm) CreateEvent(ctx context.Context, e *models.Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.Event{})
		if err != nil {
			return err
		}
		e.ID = id
		return tx.Create(e).Error
	})
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	s.touch("events", "create")
	return nil
}

func (s *Gorm) UpdateEvent(ctx context.Context, e *models.Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).Where("id = ?", e.ID).Updates(map[string]any{
			"date":        e.Date,
			"title":       e.Title,
			"description": e.Description,
			"color_tag":   e.ColorTag,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(e, "id = ?", e.ID).Error
	})
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	s.touch("events", "update")
	return nil
}

func (s *Gorm) DeleteEvent(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Event{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.Attendance{}, "event_id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	s.touch("events", "delete")
	return nil
}

// ---- treasury ----

// Transactions returns the ledger, most recent first.
func (s *Gorm) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := s.db.WithContext(ctx).Order("date desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return out, nil
}

func (s *Gorm) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := validateTransaction(t); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createTransaction(tx, t)
	})
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	s.touch("transactions", "create")
	return nil
}

func createTransaction(tx *gorm.DB, t *models.Transaction) error {
	id, err := nextID(tx, &models.Transaction{})
	if err != nil {
		return err
	}
	t.ID = id
	return tx.Create(t).Error
}

func (s *Gorm) DeleteTransaction(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}
	s.touch("transactions", "delete")
	return nil
}

// ---- dues ----

func (s *Gorm) DuesStatuses(ctx context.Context) ([]models.DuesStatus, error) {
	var out []models.DuesStatus
	if err := s.db.WithContext(ctx).Order("member_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load dues: %w", err)
	}
	return out, nil
}

// SetDuesStatus writes the member's status, replacing any previous one.
func (s *Gorm) SetDuesStatus(ctx context.Context, memberID int64, status models.PaymentStatus) error {
	if !status.Valid() {
		return invalid("payment status %q", status)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Member{}).Where("id = ?", memberID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		row := models.DuesStatus{MemberID: memberID, Status: status, UpdatedAt: s.now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("set dues status of member %d: %w", memberID, err)
	}
	s.touch("dues_statuses", "upsert")
	return nil
}

// ---- attendance ----

func (s *Gorm) Attendance(ctx context.Context, eventID int64) ([]models.Attendance, error) {
	var out []models.Attendance
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("member_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load attendance of event %d: %w", eventID, err)
	}
	return out, nil
}

// RecordAttendance inserts one record per entry of presence for members that
// are not yet registered for the event. Existing records are left untouched
// and unknown members are skipped. It returns the number of rows inserted.
func (s *Gorm) RecordAttendance(ctx context.Context, eventID int64, presence map[int64]bool) (int, error) {
	memberIDs := make([]int64, 0, len(presence))
	for id := range presence {
		memberIDs = append(memberIDs, id)
	}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })

	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Event{}).Where("id = ?", eventID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if len(memberIDs) == 0 {
			return nil
		}
		var registered []int64
		if err := tx.Model(&models.Attendance{}).Where("event_id = ?", eventID).Pluck("member_id", &registered).Error; err != nil {
			return err
		}
		var known []int64
		if err := tx.Model(&models.Member{}).Where("id IN ?", memberIDs).Pluck("id", &known).Error; err != nil {
			return err
		}
		skip := make(map[int64]bool, len(registered))
		for _, id := range registered {
			skip[id] = true
		}
		exists := make(map[int64]bool, len(known))
		for _, id := range known {
			exists[id] = true
		}
		now := s.now()
		rows := make([]models.Attendance, 0, len(memberIDs))
		for _, id := range memberIDs {
			if skip[id] {
				continue
			}
			if !exists[id] {
				s.log.Warn("attendance for unknown member skipped", "event_id", eventID, "member_id", id)
				continue
			}
			rows = append(rows, models.Attendance{EventID: eventID, MemberID: id, Present: presence[id], CreatedAt: now})
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		inserted = len(rows)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record attendance of event %d: %w", eventID, err)
	}
	if inserted > 0 {
		s.touch("attendances", "create")
	}
	return inserted, nil
}

// DeleteAttendance removes a single record so it can be entered again.
func (s *Gorm) DeleteAttendance(ctx context.Context, eventID, memberID int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Attendance{}, "event_id = ? AND member_id = ?", eventID, memberID)
	if res.Error != nil {
		return fmt.Errorf("delete attendance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete attendance of member %d at event %d: %w", memberID, eventID, ErrNotFound)
	}
	s.touch("attendances", "delete")
	return nil
}

// ---- receipts ----

func (s *Gorm) Receipts(ctx context.Context) ([]models.Receipt, error) {
	var out []models.Receipt
	if err := s.db.WithContext(ctx).Order("id desc").Limit(100).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load receipts: %w", err)
	}
	return out, nil
}

// FailedReceipts lists every receipt still waiting for a readable amount,
// oldest first.
func (s *Gorm) FailedReceipts(ctx context.Context) ([]models.Receipt, error) {
	var out []models.Receipt
	err := s.db.WithContext(ctx).
		Where("failed = ? AND transaction_id IS NULL", true).
		Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load failed receipts: %w", err)
	}
	return out, nil
}

func (s *Gorm) ReceiptByFileName(ctx context.Context, name string) (models.Receipt, error) {
	var r models.Receipt
	if err := s.db.WithContext(ctx).Where("file_name = ?", name).First(&r).Error; err != nil {
		return models.Receipt{}, notFound(err)
	}
	return r, nil
}

// SaveReceipt stores r. When t is not nil the transaction is created in the
// same write and linked to the receipt.
func (s *Gorm) SaveReceipt(ctx context.Context, r *models.Receipt, t *models.Transaction) error {
	if t != nil {
		if err := validateTransaction(t); err != nil {
			return err
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t != nil {
			if err := createTransaction(tx, t); err != nil {
				return err
			}
			id := t.ID
			r.TransactionID = &id
			r.Failed = false
			r.FailedReason = ""
		}
		return tx.Save(r).Error
	})
	if err != nil {
		return fmt.Errorf("save receipt %s: %w", r.FileName, err)
	}
	if t != nil {
		s.touch("transactions", "create")
	}
	s.touch("receipts", "save")
	return nil
}
