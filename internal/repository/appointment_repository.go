package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

type AppointmentRepository interface {
	// Найти запись по ID.
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	// Записи пользователя, новые первыми, с интервалом.
	ListByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	// Все записи (админ), новые первыми, с пользователем и интервалом.
	ListAll(ctx context.Context, limit, offset int) ([]model.Appointment, int64, error)
	// Подтверждённые, но не провалидированные админом записи,
	// по дате и времени начала.
	ListUnvalidated(ctx context.Context) ([]model.Appointment, error)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).Preload("Interval").First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) ListByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Interval").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&appts).Error
	return appts, err
}

func (r *GormAppointmentRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Appointment, int64, error) {
	var (
		appts []model.Appointment
		total int64
	)

	q := r.db.WithContext(ctx).Model(&model.Appointment{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Preload("User").Preload("Interval").
		Order("created_at DESC").
		Find(&appts).Error; err != nil {
		return nil, 0, err
	}

	return appts, total, nil
}

func (r *GormAppointmentRepository) ListUnvalidated(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Interval").
		Where("status = ?", model.AppointmentConfirmed).
		Where("validated_by_admin = ?", false).
		Order("date ASC, starts_at ASC").
		Find(&appts).Error
	return appts, err
}
