package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// Статус проверки справки студента.
type JustificatifStatus string

const (
	JustificatifPending  JustificatifStatus = "pending"
	JustificatifApproved JustificatifStatus = "approved"
	JustificatifRejected JustificatifStatus = "rejected"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	FirstName string `gorm:"type:varchar(255);not null"`
	LastName  string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"`

	Role     UserRole `gorm:"type:varchar(32);not null;default:'student';index"`
	IsActive bool     `gorm:"not null;default:true;index"`

	// Справка о статусе студента: хранится снаружи, здесь только ссылка.
	JustificatifPath    string             `gorm:"type:varchar(512)"`
	JustificatifStatus  JustificatifStatus `gorm:"type:varchar(32);not null;default:'pending'"`
	JustificatifComment string             `gorm:"type:text"`

	// Квота посещений: сколько уже подтверждено админом и сколько разрешено всего.
	PassesUsed    int `gorm:"not null;default:0"`
	PassesAllowed int `gorm:"not null;default:2"`

	IsDeleted bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Appointments []Appointment `gorm:"foreignKey:UserID"`
}
