package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

type UserRepository interface {
	// Найти пользователя по ID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Найти пользователя по email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Создать пользователя.
	Create(ctx context.Context, user *model.User) error
	// Инкремент использованных посещений (при подтверждении визита админом).
	IncrementPassesUsed(ctx context.Context, id string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&u, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) IncrementPassesUsed(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("passes_used", gorm.Expr("passes_used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
