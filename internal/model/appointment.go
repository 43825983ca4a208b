package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус записи. Из confirmed запись уходит в один из остальных статусов;
// обратно в confirmed возвращается только cancelled (путь «reprise»).
type AppointmentStatus string

const (
	AppointmentConfirmed     AppointmentStatus = "confirmed"
	AppointmentCancelled     AppointmentStatus = "cancelled"
	AppointmentCompleted     AppointmentStatus = "completed"
	AppointmentAdminApproved AppointmentStatus = "admin_approved"
	AppointmentAdminRejected AppointmentStatus = "admin_rejected"
	AppointmentMissed        AppointmentStatus = "missed"
)

// appointments
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_appointments_user_interval"`
	IntervalID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_appointments_user_interval"`

	// Денормализованное время интервала: фиксируется при бронировании,
	// чтобы запись пережила изменение самого интервала.
	Date     datatypes.Date `gorm:"type:date;not null;index"`
	StartsAt time.Time      `gorm:"not null"`
	EndsAt   time.Time      `gorm:"not null"`

	Status AppointmentStatus `gorm:"type:varchar(32);not null;default:'confirmed';index"`

	Note      string `gorm:"type:text"`
	AdminNote string `gorm:"type:text"`

	ValidatedByAdmin bool       `gorm:"not null;default:false;index"`
	ValidatedAt      *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Interval *Interval `gorm:"foreignKey:IntervalID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
