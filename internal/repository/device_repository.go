package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"id-collector-api/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no record matches the android_id.
var ErrNotFound = errors.New("device not found")

const (
	// upsertAttempts bounds the retry after a deadlock or a lost race on android_id.
	upsertAttempts = 3

	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// upsertColumns are overwritten when android_id already exists.
var upsertColumns = []string{"advertising_id", "limit_ad_tracking", "device_info", "updated_at"}

type DeviceRepository interface {
	Migrate(ctx context.Context) error
	List(ctx context.Context, skip, limit int) ([]model.DeviceRecord, error)
	GetByAndroidID(ctx context.Context, androidID string) (*model.DeviceRecord, error)
	Upsert(ctx context.Context, req *model.StoreDeviceRequest) (*model.DeviceRecord, error)
	Count(ctx context.Context) (int64, error)
}

type deviceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db, now: utcNow}
}

// storage keeps millisecond precision on MySQL, match it so reads equal writes
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Migrate creates device_ids and its indexes when missing. Safe to call repeatedly.
func (r *deviceRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&model.DeviceRecord{}); err != nil {
		return fmt.Errorf("migrating device_ids: %w", err)
	}
	return nil
}

// List returns records in insertion order. A skip past the end yields an empty slice.
func (r *deviceRepository) List(ctx context.Context, skip, limit int) ([]model.DeviceRecord, error) {
	records := []model.DeviceRecord{}
	err := r.db.WithContext(ctx).
		Order("id asc").
		Offset(skip).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if records == nil {
		records = []model.DeviceRecord{}
	}
	return records, nil
}

func (r *deviceRepository) GetByAndroidID(ctx context.Context, androidID string) (*model.DeviceRecord, error) {
	var record model.DeviceRecord
	err := r.db.WithContext(ctx).Where("android_id = ?", androidID).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting device %s: %w", androidID, err)
	}
	return &record, nil
}

// Upsert inserts a new record or overwrites advertising_id, limit_ad_tracking,
// device_info and updated_at of the existing one. The write is a single
// INSERT .. ON CONFLICT(android_id) DO UPDATE, so a concurrent insert of the
// same android_id turns this call into an update. created_at is never part
// of the update set. Deadlocks are retried.
func (r *deviceRepository) Upsert(ctx context.Context, req *model.StoreDeviceRequest) (*model.DeviceRecord, error) {
	in := req.ToRecord()

	var (
		record *model.DeviceRecord
		err    error
	)
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		record, err = r.upsertOnce(ctx, in)
		if !retryable(err) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("upserting device %s: %w", in.AndroidID, err)
	}
	return record, nil
}

func (r *deviceRepository) upsertOnce(ctx context.Context, in model.DeviceRecord) (*model.DeviceRecord, error) {
	var record model.DeviceRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now()

		row := in
		row.CreatedAt = now
		row.UpdatedAt = now
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "android_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		// the insert id is unreliable when the conflict branch ran, read the row back
		return tx.Where("android_id = ?", in.AndroidID).Take(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// retryable reports errors where running the upsert again can succeed.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	return false
}

func (r *deviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.DeviceRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting devices: %w", err)
	}
	return count, nil
}
