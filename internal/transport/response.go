package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error     string `json:"error"`
	WeekStart string `json:"week_start,omitempty"`
	WeekEnd   string `json:"week_end,omitempty"`
}

// respondError переводит доменную ошибку в HTTP-статус. Нарушения
// бизнес-правил получают конкретную причину; ошибки хранилища наружу
// не протекают — клиенту уходит общий 500.
func respondError(c *gin.Context, err error) {
	var weekErr *model.WeeklyLimitError
	if errors.As(err, &weekErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     weekErr.Error(),
			WeekStart: weekErr.WeekStart.Format("2006-01-02"),
			WeekEnd:   weekErr.WeekEnd.Format("2006-01-02"),
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrBlockNotFound),
		errors.Is(err, model.ErrIntervalNotFound),
		errors.Is(err, model.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, model.ErrUserInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case errors.Is(err, model.ErrSlotUnavailable),
		errors.Is(err, model.ErrDuplicateBooking),
		errors.Is(err, model.ErrPassLimitExceeded),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrIntervalsExist):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, model.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	default:
		logrus.Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
