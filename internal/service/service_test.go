package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Один коннект: in-memory база живёт в пределах соединения.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return db
}

func newBookingService(db *gorm.DB) *BookingService {
	return NewBookingService(
		db,
		repository.NewGormUserRepository(db),
		repository.NewGormIntervalRepository(db),
		repository.NewGormAppointmentRepository(db),
	)
}

func newCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(
		repository.NewGormBlockRepository(db),
		repository.NewGormIntervalRepository(db),
		0, 0,
	)
}

func mustCreateUser(t *testing.T, db *gorm.DB, passesAllowed int) *model.User {
	t.Helper()

	u := &model.User{
		ID:            uuid.New(),
		FirstName:     "Jean",
		LastName:      "Martin",
		Email:         uuid.NewString() + "@example.org",
		Role:          model.UserRoleStudent,
		IsActive:      true,
		PassesAllowed: passesAllowed,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustCreateInterval(t *testing.T, db *gorm.DB, day time.Time, startHour, startMin, capacity int) *model.Interval {
	t.Helper()

	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	starts := day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute)

	iv := &model.Interval{
		ID:            uuid.New(),
		Date:          datatypes.Date(day),
		StartsAt:      starts,
		EndsAt:        starts.Add(15 * time.Minute),
		CapacityTotal: capacity,
		CapacityLeft:  capacity,
		IsActive:      true,
	}
	if err := db.Create(iv).Error; err != nil {
		t.Fatalf("create interval: %v", err)
	}
	return iv
}

func capacityLeft(t *testing.T, db *gorm.DB, intervalID uuid.UUID) int {
	t.Helper()

	var iv model.Interval
	if err := db.First(&iv, "id = ?", intervalID).Error; err != nil {
		t.Fatalf("load interval: %v", err)
	}
	return iv.CapacityLeft
}
