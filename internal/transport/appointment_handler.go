package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/service"
	"github.com/epicerie-solidaire/booking-core/internal/transport/middleware"
)

type AppointmentHandler struct {
	booking *service.BookingService
	sweeper *service.MissedSweeper
}

func NewAppointmentHandler(booking *service.BookingService, sweeper *service.MissedSweeper) *AppointmentHandler {
	return &AppointmentHandler{booking: booking, sweeper: sweeper}
}

type bookRequest struct {
	IntervalID string `json:"interval_id" binding:"required,uuid"`
	Note       string `json:"note" binding:"max=500"`
}

type bookResponse struct {
	Message       string             `json:"message"`
	AppointmentID string             `json:"appointment_id"`
	IntervalID    string             `json:"interval_id"`
	Status        string             `json:"status"`
	Appointment   *model.Appointment `json:"appointment"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	result, err := h.booking.Book(c.Request.Context(), userID, req.IntervalID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "appointment booked"
	status := http.StatusCreated
	if result.Resumed {
		msg = "appointment resumed"
		status = http.StatusOK
	}

	c.JSON(status, bookResponse{
		Message:       msg,
		AppointmentID: result.Appointment.ID.String(),
		IntervalID:    result.Appointment.IntervalID.String(),
		Status:        string(result.Appointment.Status),
		Appointment:   result.Appointment,
	})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	role := model.UserRole(c.GetString(middleware.CtxRole))

	appt, err := h.booking.Cancel(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "appointment cancelled",
		"status":      appt.Status,
		"appointment": appt,
	})
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	appts, err := h.booking.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (h *AppointmentHandler) ListAll(c *gin.Context) {
	limit, offset := pageParams(c)

	appts, total, err := h.booking.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": appts, "total": total})
}

// ListUnvalidated: перед выдачей списка прогоняется внеплановый sweep,
// чтобы просроченные записи не попали в очередь на валидацию.
func (h *AppointmentHandler) ListUnvalidated(c *gin.Context) {
	if _, err := h.sweeper.Sweep(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	appts, err := h.booking.ListUnvalidated(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

type adminNoteRequest struct {
	AdminNote string `json:"admin_note" binding:"max=500"`
}

func (h *AppointmentHandler) Validate(c *gin.Context) {
	var req adminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	appt, err := h.booking.Validate(c.Request.Context(), c.Param("id"), req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment validated", "appointment": appt})
}

func (h *AppointmentHandler) Reject(c *gin.Context) {
	var req adminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	appt, err := h.booking.Reject(c.Request.Context(), c.Param("id"), req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment rejected", "appointment": appt})
}
