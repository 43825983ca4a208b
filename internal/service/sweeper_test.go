package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

func TestMissedSweeper_MarksStaleAndReleases(t *testing.T) {
	db := newTestDB(t)
	booking := newBookingService(db)
	sweeper := NewMissedSweeper(db, time.Hour)

	user := mustCreateUser(t, db, 2)
	// Интервал закончился позавчера: далеко за пределами льготного часа.
	past := time.Now().UTC().AddDate(0, 0, -2)
	iv := mustCreateInterval(t, db, past, 9, 0, 3)

	res, err := booking.Book(context.Background(), user.ID.String(), iv.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, capacityLeft(t, db, iv.ID))

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var appt model.Appointment
	require.NoError(t, db.First(&appt, "id = ?", res.Appointment.ID).Error)
	assert.Equal(t, model.AppointmentMissed, appt.Status)
	assert.Equal(t, 3, capacityLeft(t, db, iv.ID))
}

func TestMissedSweeper_Idempotent(t *testing.T) {
	db := newTestDB(t)
	booking := newBookingService(db)
	sweeper := NewMissedSweeper(db, time.Hour)

	user := mustCreateUser(t, db, 2)
	past := time.Now().UTC().AddDate(0, 0, -2)
	iv := mustCreateInterval(t, db, past, 9, 0, 3)

	_, err := booking.Book(context.Background(), user.ID.String(), iv.ID.String(), "")
	require.NoError(t, err)

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Второй проход ничего не находит и не освобождает место повторно.
	count, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 3, capacityLeft(t, db, iv.ID))
}

func TestMissedSweeper_SkipsRecentAndValidated(t *testing.T) {
	db := newTestDB(t)
	booking := newBookingService(db)
	sweeper := NewMissedSweeper(db, time.Hour)

	// Будущая запись: не трогаем.
	future := mustCreateUser(t, db, 2)
	futureDay := time.Now().UTC().AddDate(0, 0, 7)
	futureIv := mustCreateInterval(t, db, futureDay, 9, 0, 3)
	_, err := booking.Book(context.Background(), future.ID.String(), futureIv.ID.String(), "")
	require.NoError(t, err)

	// Просроченная, но провалидированная: админ подтвердил визит.
	validated := mustCreateUser(t, db, 2)
	past := time.Now().UTC().AddDate(0, 0, -9)
	pastIv := mustCreateInterval(t, db, past, 9, 0, 3)
	res, err := booking.Book(context.Background(), validated.ID.String(), pastIv.ID.String(), "")
	require.NoError(t, err)
	_, err = booking.Validate(context.Background(), res.Appointment.ID.String(), "")
	require.NoError(t, err)

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	var appt model.Appointment
	require.NoError(t, db.First(&appt, "id = ?", res.Appointment.ID).Error)
	assert.Equal(t, model.AppointmentAdminApproved, appt.Status)
}

func TestMissedSweeper_GraceWindow(t *testing.T) {
	db := newTestDB(t)
	booking := newBookingService(db)
	sweeper := NewMissedSweeper(db, 48*time.Hour)

	user := mustCreateUser(t, db, 2)
	// Закончился вчера, но льготный период двое суток — ещё рано.
	past := time.Now().UTC().AddDate(0, 0, -1)
	iv := mustCreateInterval(t, db, past, 9, 0, 3)

	res, err := booking.Book(context.Background(), user.ID.String(), iv.ID.String(), "")
	require.NoError(t, err)

	count, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	var appt model.Appointment
	require.NoError(t, db.First(&appt, "id = ?", res.Appointment.ID).Error)
	assert.Equal(t, model.AppointmentConfirmed, appt.Status)
	assert.Equal(t, 2, capacityLeft(t, db, iv.ID))
}

func TestMissedSweeper_Run_StopsOnContextCancel(t *testing.T) {
	db := newTestDB(t)
	sweeper := NewMissedSweeper(db, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
