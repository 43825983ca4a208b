package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

type IntervalRepository interface {
	// Найти интервал по ID.
	GetByID(ctx context.Context, id string) (*model.Interval, error)
	// Есть ли уже интервалы у данного окна.
	ExistsForBlock(ctx context.Context, blockID string) (bool, error)
	// Пакетная вставка сгенерированных интервалов.
	CreateBatch(ctx context.Context, intervals []model.Interval) error
	// Активные интервалы на день, по времени начала.
	ListActiveByDate(ctx context.Context, day time.Time) ([]model.Interval, error)
	// Активные интервалы диапазона дат (для отображения доступности).
	ListActiveByRange(ctx context.Context, from, to time.Time) ([]model.Interval, error)
}

type GormIntervalRepository struct {
	db *gorm.DB
}

func NewGormIntervalRepository(db *gorm.DB) *GormIntervalRepository {
	return &GormIntervalRepository{db: db}
}

func (r *GormIntervalRepository) GetByID(ctx context.Context, id string) (*model.Interval, error) {
	var iv model.Interval
	if err := r.db.WithContext(ctx).First(&iv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrIntervalNotFound
		}
		return nil, err
	}
	return &iv, nil
}

func (r *GormIntervalRepository) ExistsForBlock(ctx context.Context, blockID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Interval{}).
		Where("block_id = ?", blockID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormIntervalRepository) CreateBatch(ctx context.Context, intervals []model.Interval) error {
	if len(intervals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&intervals).Error
}

func (r *GormIntervalRepository) ListActiveByDate(ctx context.Context, day time.Time) ([]model.Interval, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var intervals []model.Interval
	err := r.db.WithContext(ctx).
		Where("date = ?", datatypes.Date(day)).
		Where("is_active = ?", true).
		Order("starts_at ASC").
		Find(&intervals).Error
	return intervals, err
}

func (r *GormIntervalRepository) ListActiveByRange(ctx context.Context, from, to time.Time) ([]model.Interval, error) {
	var intervals []model.Interval
	err := r.db.WithContext(ctx).
		Where("starts_at >= ? AND ends_at <= ?", from, to).
		Where("is_active = ?", true).
		Order("starts_at ASC").
		Find(&intervals).Error
	return intervals, err
}

// ReserveInterval занимает одно место: условный декремент одним запросом.
// Проверка и списание совмещены, поэтому два конкурентных вызова не могут
// оба пройти при одном оставшемся месте. Нулевой RowsAffected означает,
// что интервал выключен, занят полностью или не существует.
func ReserveInterval(tx *gorm.DB, id string) error {
	res := tx.Model(&model.Interval{}).
		Where("id = ? AND is_active = ? AND capacity_left > 0", id, true).
		Update("capacity_left", gorm.Expr("capacity_left - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrSlotUnavailable
	}
	return nil
}

// ReleaseInterval возвращает одно место с потолком capacity_total.
// Лишний вызов поверх полного интервала — no-op, счётчик не растёт выше total.
func ReleaseInterval(tx *gorm.DB, id string) error {
	return tx.Model(&model.Interval{}).
		Where("id = ? AND capacity_left < capacity_total", id).
		Update("capacity_left", gorm.Expr("capacity_left + 1")).
		Error
}
