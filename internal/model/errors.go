package model

import (
	"errors"
	"fmt"
	"time"
)

// Доменные ошибки подсистемы бронирования.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user account is deactivated")
	ErrBlockNotFound       = errors.New("slot block not found")
	ErrIntervalNotFound    = errors.New("interval not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	ErrForbidden         = errors.New("forbidden")
	ErrSlotUnavailable   = errors.New("no places left on this interval")
	ErrDuplicateBooking  = errors.New("already has a confirmed appointment on this interval")
	ErrPassLimitExceeded = errors.New("allowed visits limit reached")
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrIntervalsExist    = errors.New("intervals already generated for this block")

	ErrInvalidInput = errors.New("invalid input")
)

// WeeklyLimitError — нарушение правила «одна подтверждённая запись в неделю».
// Несёт границы недели, чтобы клиент мог показать их пользователю.
type WeeklyLimitError struct {
	WeekStart time.Time
	WeekEnd   time.Time
}

func (e *WeeklyLimitError) Error() string {
	return fmt.Sprintf(
		"only one appointment per week allowed (week %s to %s)",
		e.WeekStart.Format("2006-01-02"),
		e.WeekEnd.Format("2006-01-02"),
	)
}
