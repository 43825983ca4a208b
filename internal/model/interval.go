package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Interval — атомарная единица бронирования со своим счётчиком мест.
// CapacityLeft меняется только через резервирование/освобождение,
// инвариант: 0 <= CapacityLeft <= CapacityTotal.
type Interval struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Родительское окно; nil для интервалов, созданных напрямую.
	BlockID *uuid.UUID `gorm:"type:uuid;index"`

	Date     datatypes.Date `gorm:"type:date;not null;index"`
	StartsAt time.Time      `gorm:"not null;index"`
	EndsAt   time.Time      `gorm:"not null"`

	CapacityTotal int `gorm:"not null"`
	CapacityLeft  int `gorm:"not null"`

	// Мягкое выключение интервала независимо от заполненности.
	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Block        *SlotBlock    `gorm:"foreignKey:BlockID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Appointments []Appointment `gorm:"foreignKey:IntervalID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
