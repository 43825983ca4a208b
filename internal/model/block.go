package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SlotBlock — родительское окно приёма (например, 08:00–12:00),
// которое админ нарезает на бронируемые интервалы.
type SlotBlock struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Календарный день окна — по нему считается недельная квота.
	Date datatypes.Date `gorm:"type:date;not null;index"`

	StartsAt time.Time `gorm:"not null"`
	EndsAt   time.Time `gorm:"not null"`

	// Параметры нарезки.
	IntervalMinutes  int `gorm:"not null;default:15"`
	IntervalCapacity int `gorm:"not null;default:3"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Intervals []Interval `gorm:"foreignKey:BlockID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
