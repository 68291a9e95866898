package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lazy-tourist-be/pkg/planner/state"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one row of the trip_checkpoints table.
type Record struct {
	ID        string         `gorm:"primaryKey;type:varchar(64)"`
	Status    string         `gorm:"type:varchar(16);index"`
	NextStep  string         `gorm:"type:varchar(32)"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	ExpiresAt *time.Time     `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "trip_checkpoints"
}

// GormStore keeps checkpoints in Postgres. A zero ttl keeps rows forever.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

var _ Store = &GormStore{}

// NewGormStore migrates the checkpoint table and returns the store.
func NewGormStore(ctx context.Context, db *gorm.DB, ttl time.Duration) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate checkpoints: %w", err)
	}
	return &GormStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *GormStore) Save(ctx context.Context, session *state.Session) error {
	data, err := encode(session)
	if err != nil {
		return err
	}

	rec := Record{
		ID:       session.ID,
		Status:   string(session.Status),
		NextStep: string(session.NextStep),
		Data:     datatypes.JSON(data),
	}
	if s.ttl > 0 {
		exp := s.now().Add(s.ttl)
		rec.ExpiresAt = &exp
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "next_step", "data", "expires_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", session.ID, err)
	}
	return nil
}

func (s *GormStore) Load(ctx context.Context, id string) (*state.Session, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Where("expires_at IS NULL OR expires_at > ?", s.now()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	return decode(rec.Data)
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	return nil
}

// PurgeExpired removes rows past their expiry and reports how many went.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&Record{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge checkpoints: %w", res.Error)
	}
	return res.RowsAffected, nil
}
