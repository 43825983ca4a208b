package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/epicerie-solidaire/booking-core/internal/calendar"
	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/repository"
)

// BookingService — машина состояний записи: проверка права на бронь,
// недельной квоты, вместимости интервала; создание и возобновление записи.
//
// Попытки бронирования одного пользователя сериализуются внутрипроцессным
// мьютексом на userID: проверка недельной квоты охватывает несколько строк и
// без сериализации подвержена гонке check-then-act (две вкладки браузера).
// Счётчик мест от этого не зависит: он защищён условным UPDATE в БД.
type BookingService struct {
	db           *gorm.DB
	users        repository.UserRepository
	intervals    repository.IntervalRepository
	appointments repository.AppointmentRepository

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewBookingService(
	db *gorm.DB,
	users repository.UserRepository,
	intervals repository.IntervalRepository,
	appointments repository.AppointmentRepository,
) *BookingService {
	return &BookingService{
		db:           db,
		users:        users,
		intervals:    intervals,
		appointments: appointments,
		userLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *BookingService) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// BookingResult — итог бронирования. Resumed различает возобновление
// отменённой записи и новую бронь (форма одна, сообщение разное).
type BookingResult struct {
	Appointment *model.Appointment
	Resumed     bool
}

// Book бронирует место на интервале для пользователя.
func (s *BookingService) Book(ctx context.Context, userID, intervalID, note string) (*BookingResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	interval, err := s.intervals.GetByID(ctx, intervalID)
	if err != nil {
		return nil, err
	}
	if !interval.IsActive {
		return nil, model.ErrIntervalNotFound
	}
	if interval.CapacityLeft <= 0 {
		return nil, model.ErrSlotUnavailable
	}

	targetDay := time.Time(interval.Date)

	var result *BookingResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Недельная квота: не более одной подтверждённой записи на
		// календарную неделю интервала.
		conflict, err := s.hasConfirmedInWeek(tx, userID, targetDay, "")
		if err != nil {
			return err
		}

		var existing model.Appointment
		lookupErr := tx.
			Where("user_id = ? AND interval_id = ?", userID, intervalID).
			First(&existing).Error

		switch {
		case lookupErr == nil && existing.Status == model.AppointmentConfirmed:
			return model.ErrDuplicateBooking

		case lookupErr == nil && existing.Status == model.AppointmentCancelled:
			// Путь возобновления: квота проверяется без учёта самой
			// возобновляемой записи — отмененный слот можно вернуть,
			// но не взять дополнительный в ту же неделю.
			conflict, err = s.hasConfirmedInWeek(tx, userID, targetDay, existing.ID.String())
			if err != nil {
				return err
			}
			if conflict {
				ws, we := calendar.WeekWindow(targetDay)
				return &model.WeeklyLimitError{WeekStart: ws, WeekEnd: we}
			}
			return s.resume(tx, &existing, interval, note, &result)

		case lookupErr == nil:
			// Запись в терминальном статусе (manquée, terminée, ...) уже
			// занимает пару (user, interval); повторная бронь невозможна.
			return model.ErrDuplicateBooking

		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			if conflict {
				ws, we := calendar.WeekWindow(targetDay)
				return &model.WeeklyLimitError{WeekStart: ws, WeekEnd: we}
			}
			if user.PassesUsed >= user.PassesAllowed {
				return model.ErrPassLimitExceeded
			}
			return s.create(tx, user, interval, note, &result)

		default:
			return lookupErr
		}
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"interval_id": intervalID,
		"resumed":     result.Resumed,
	}).Info("appointment booked")

	return result, nil
}

// hasConfirmedInWeek проверяет квоту по денормализованным датам подтверждённых
// записей пользователя. excludeID исключает возобновляемую запись.
func (s *BookingService) hasConfirmedInWeek(tx *gorm.DB, userID string, day time.Time, excludeID string) (bool, error) {
	q := tx.Model(&model.Appointment{}).
		Where("user_id = ? AND status = ?", userID, model.AppointmentConfirmed)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var appts []model.Appointment
	if err := q.Find(&appts).Error; err != nil {
		return false, fmt.Errorf("load confirmed appointments: %w", err)
	}

	dates := make([]time.Time, 0, len(appts))
	for _, a := range appts {
		dates = append(dates, time.Time(a.Date))
	}
	return calendar.HasDateInWeek(dates, day), nil
}

func (s *BookingService) create(tx *gorm.DB, user *model.User, interval *model.Interval, note string, out **BookingResult) error {
	if err := repository.ReserveInterval(tx, interval.ID.String()); err != nil {
		return err
	}

	appt := &model.Appointment{
		ID:         uuid.New(),
		UserID:     user.ID,
		IntervalID: interval.ID,
		Date:       interval.Date,
		StartsAt:   interval.StartsAt,
		EndsAt:     interval.EndsAt,
		Status:     model.AppointmentConfirmed,
		Note:       note,
	}
	if err := tx.Create(appt).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	*out = &BookingResult{Appointment: appt, Resumed: false}
	return nil
}

func (s *BookingService) resume(tx *gorm.DB, existing *model.Appointment, interval *model.Interval, note string, out **BookingResult) error {
	// Сначала место: условный декремент заодно перепроверяет, что интервал
	// всё ещё активен и не занят кем-то другим после отмены.
	if err := repository.ReserveInterval(tx, interval.ID.String()); err != nil {
		return err
	}

	updates := map[string]any{
		"status":    model.AppointmentConfirmed,
		"date":      interval.Date,
		"starts_at": interval.StartsAt,
		"ends_at":   interval.EndsAt,
	}
	if note != "" {
		updates["note"] = note
	}

	// Переход cancelled -> confirmed условный: конкурентное возобновление
	// той же записи не пройдёт дважды.
	res := tx.Model(&model.Appointment{}).
		Where("id = ? AND status = ?", existing.ID, model.AppointmentCancelled).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("resume appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrDuplicateBooking
	}

	existing.Status = model.AppointmentConfirmed
	existing.Date = interval.Date
	existing.StartsAt = interval.StartsAt
	existing.EndsAt = interval.EndsAt
	if note != "" {
		existing.Note = note
	}

	*out = &BookingResult{Appointment: existing, Resumed: true}
	return nil
}

// Cancel отменяет запись. Разрешено владельцу и админу. Отмена уже
// отменённой записи отклоняется: освобождение места должно быть ровно
// одним на каждую бронь.
func (s *BookingService) Cancel(ctx context.Context, appointmentID, callerID string, callerRole model.UserRole) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if callerRole != model.UserRoleAdmin && appt.UserID.String() != callerID {
		return nil, model.ErrForbidden
	}

	if appt.Status == model.AppointmentCancelled {
		return nil, model.ErrAlreadyCancelled
	}
	if appt.Status != model.AppointmentConfirmed {
		return nil, fmt.Errorf("%w: appointment in status %q cannot be cancelled", model.ErrInvalidInput, appt.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, model.AppointmentConfirmed).
			Update("status", model.AppointmentCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrAlreadyCancelled
		}
		return repository.ReleaseInterval(tx, appt.IntervalID.String())
	})
	if err != nil {
		return nil, err
	}

	appt.Status = model.AppointmentCancelled

	logrus.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"cancelled_by":   callerID,
	}).Info("appointment cancelled")

	return appt, nil
}

// Validate подтверждает состоявшийся визит (админ): статус admin_approved,
// отметка и время валидации, инкремент счётчика посещений пользователя.
func (s *BookingService) Validate(ctx context.Context, appointmentID, adminNote string) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentConfirmed {
		return nil, fmt.Errorf("%w: appointment in status %q cannot be validated", model.ErrInvalidInput, appt.Status)
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":             model.AppointmentAdminApproved,
			"validated_by_admin": true,
			"validated_at":       now,
		}
		if adminNote != "" {
			updates["admin_note"] = adminNote
		}

		res := tx.Model(&model.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, model.AppointmentConfirmed).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: appointment already processed", model.ErrInvalidInput)
		}

		return tx.Model(&model.User{}).
			Where("id = ?", appt.UserID).
			Update("passes_used", gorm.Expr("passes_used + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	appt.Status = model.AppointmentAdminApproved
	appt.ValidatedByAdmin = true
	appt.ValidatedAt = &now
	if adminNote != "" {
		appt.AdminNote = adminNote
	}
	return appt, nil
}

// Reject отклоняет визит (админ). Терминальный статус, мест не трогает.
func (s *BookingService) Reject(ctx context.Context, appointmentID, adminNote string) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentConfirmed {
		return nil, fmt.Errorf("%w: appointment in status %q cannot be rejected", model.ErrInvalidInput, appt.Status)
	}

	updates := map[string]any{"status": model.AppointmentAdminRejected}
	if adminNote != "" {
		updates["admin_note"] = adminNote
	}

	res := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, model.AppointmentConfirmed).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: appointment already processed", model.ErrInvalidInput)
	}

	appt.Status = model.AppointmentAdminRejected
	if adminNote != "" {
		appt.AdminNote = adminNote
	}
	return appt, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *BookingService) ListAll(ctx context.Context, limit, offset int) ([]model.Appointment, int64, error) {
	return s.appointments.ListAll(ctx, limit, offset)
}

func (s *BookingService) ListUnvalidated(ctx context.Context) ([]model.Appointment, error) {
	return s.appointments.ListUnvalidated(ctx)
}
