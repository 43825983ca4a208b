package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

type BlockRepository interface {
	// Создать родительское окно.
	Create(ctx context.Context, block *model.SlotBlock) error
	// Найти окно по ID.
	GetByID(ctx context.Context, id string) (*model.SlotBlock, error)
	// Все окна, по дате и времени начала.
	List(ctx context.Context, limit, offset int) ([]model.SlotBlock, int64, error)
	// Удалить окно каскадно: записи -> интервалы -> окно, одной транзакцией.
	DeleteCascade(ctx context.Context, id string) error
}

type GormBlockRepository struct {
	db *gorm.DB
}

func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

func (r *GormBlockRepository) Create(ctx context.Context, block *model.SlotBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *GormBlockRepository) GetByID(ctx context.Context, id string) (*model.SlotBlock, error) {
	var b model.SlotBlock
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBlockNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBlockRepository) List(ctx context.Context, limit, offset int) ([]model.SlotBlock, int64, error) {
	var (
		blocks []model.SlotBlock
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&model.SlotBlock{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("date ASC, starts_at ASC").Find(&blocks).Error; err != nil {
		return nil, 0, err
	}

	return blocks, total, nil
}

func (r *GormBlockRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.SlotBlock
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrBlockNotFound
			}
			return err
		}

		// Частичный каскад не должен быть наблюдаем: всё в одной транзакции.
		if err := tx.Where(
			"interval_id IN (?)",
			tx.Model(&model.Interval{}).Select("id").Where("block_id = ?", b.ID),
		).Delete(&model.Appointment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("block_id = ?", b.ID).Delete(&model.Interval{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.SlotBlock{}, "id = ?", b.ID).Error
	})
}
