package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/repository"
)

const (
	DefaultSweepInterval = 30 * time.Minute
	DefaultSweepGrace    = time.Hour
)

// MissedSweeper переводит просроченные подтверждённые записи в статус missed.
// Запись считается просроченной, если она не провалидирована админом и её
// интервал закончился раньше, чем (сейчас - льготный период). Место на
// интервале при этом освобождается: ресурс больше никем не удерживается.
type MissedSweeper struct {
	db    *gorm.DB
	grace time.Duration
}

func NewMissedSweeper(db *gorm.DB, grace time.Duration) *MissedSweeper {
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &MissedSweeper{db: db, grace: grace}
}

// Sweep выполняет один проход. Идемпотентен: переход confirmed -> missed
// условный, освобождение места привязано к успешному переходу строки,
// поэтому повторный запуск ничего не меняет и не освобождает дважды.
func (s *MissedSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.grace)

	swept := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []model.Appointment
		if err := tx.
			Where("status = ?", model.AppointmentConfirmed).
			Where("validated_by_admin = ?", false).
			Where("ends_at < ?", cutoff).
			Find(&stale).Error; err != nil {
			return fmt.Errorf("load stale appointments: %w", err)
		}

		for _, appt := range stale {
			res := tx.Model(&model.Appointment{}).
				Where("id = ? AND status = ?", appt.ID, model.AppointmentConfirmed).
				Update("status", model.AppointmentMissed)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Кто-то успел отменить или провалидировать — пропускаем.
				continue
			}
			if err := repository.ReleaseInterval(tx, appt.IntervalID.String()); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}

// Run запускает периодические проходы до отмены контекста.
// Первый проход выполняется сразу при старте.
func (s *MissedSweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval.String()).Info("missed appointment sweeper started")

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("missed appointment sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce логирует и гасит ошибку: неудачный проход не должен ронять процесс,
// следующий тик повторит попытку.
func (s *MissedSweeper) runOnce(ctx context.Context) {
	count, err := s.Sweep(ctx)
	if err != nil {
		logrus.Errorf("missed appointment sweep failed: %v", err)
		return
	}
	if count > 0 {
		logrus.Infof("%d appointments marked as missed", count)
	}
}
