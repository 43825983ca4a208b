package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epicerie-solidaire/booking-core/internal/model"
)

func TestCatalogService_CreateBlock_Defaults(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	block, err := svc.CreateBlock(context.Background(), CreateBlockInput{
		StartsAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultIntervalMinutes, block.IntervalMinutes)
	assert.Equal(t, DefaultIntervalCapacity, block.IntervalCapacity)
	assert.True(t, block.IsActive)
	assert.Equal(t,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Time(block.Date))
}

func TestCatalogService_CreateBlock_SwappedBounds(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	block, err := svc.CreateBlock(context.Background(), CreateBlockInput{
		StartsAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, block.EndsAt.After(block.StartsAt))
}

func TestCatalogService_CreateBlock_Invalid(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	_, err := svc.CreateBlock(context.Background(), CreateBlockInput{})
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCatalogService_GenerateIntervals(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	block, err := svc.CreateBlock(context.Background(), CreateBlockInput{
		StartsAt:         time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		EndsAt:           time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		IntervalMinutes:  15,
		IntervalCapacity: 3,
	})
	require.NoError(t, err)

	intervals, err := svc.GenerateIntervals(context.Background(), block.ID.String())
	require.NoError(t, err)
	require.Len(t, intervals, 4)

	for i, iv := range intervals {
		assert.Equal(t, 3, iv.CapacityTotal)
		assert.Equal(t, 3, iv.CapacityLeft)
		assert.True(t, iv.IsActive)
		require.NotNil(t, iv.BlockID)
		assert.Equal(t, block.ID, *iv.BlockID)

		wantStart := block.StartsAt.Add(time.Duration(i) * 15 * time.Minute)
		assert.True(t, iv.StartsAt.Equal(wantStart), "slot %d: want %v, got %v", i, wantStart, iv.StartsAt)
		assert.True(t, iv.EndsAt.Equal(wantStart.Add(15*time.Minute)))
	}
}

func TestCatalogService_GenerateIntervals_RefusesSecondRun(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	block, err := svc.CreateBlock(context.Background(), CreateBlockInput{
		StartsAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = svc.GenerateIntervals(context.Background(), block.ID.String())
	require.NoError(t, err)

	// Повторная генерация снесла бы интервалы вместе с записями — отказ.
	_, err = svc.GenerateIntervals(context.Background(), block.ID.String())
	require.ErrorIs(t, err, model.ErrIntervalsExist)

	var count int64
	require.NoError(t, db.Model(&model.Interval{}).Where("block_id = ?", block.ID).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestCatalogService_GenerateIntervals_UnknownBlock(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	_, err := svc.GenerateIntervals(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, model.ErrBlockNotFound)
}

func TestCatalogService_ListAvailability(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, 1)

	a := mustCreateInterval(t, db, day, 10, 0, 3)
	b := mustCreateInterval(t, db, day, 9, 0, 3)
	mustCreateInterval(t, db, otherDay, 9, 0, 3)

	inactive := mustCreateInterval(t, db, day, 11, 0, 3)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	intervals, err := svc.ListAvailability(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	// Отсортированы по времени начала.
	assert.Equal(t, b.ID, intervals[0].ID)
	assert.Equal(t, a.ID, intervals[1].ID)
}

func TestCatalogService_DeleteBlock_Cascades(t *testing.T) {
	db := newTestDB(t)
	catalog := newCatalogService(db)
	booking := newBookingService(db)

	block, err := catalog.CreateBlock(context.Background(), CreateBlockInput{
		StartsAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	intervals, err := catalog.GenerateIntervals(context.Background(), block.ID.String())
	require.NoError(t, err)

	user := mustCreateUser(t, db, 2)
	_, err = booking.Book(context.Background(), user.ID.String(), intervals[0].ID.String(), "")
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteBlock(context.Background(), block.ID.String()))

	var blocks, ivs, appts int64
	require.NoError(t, db.Model(&model.SlotBlock{}).Count(&blocks).Error)
	require.NoError(t, db.Model(&model.Interval{}).Count(&ivs).Error)
	require.NoError(t, db.Model(&model.Appointment{}).Count(&appts).Error)

	assert.Zero(t, blocks)
	assert.Zero(t, ivs)
	assert.Zero(t, appts)
}

func TestCatalogService_DeleteBlock_Unknown(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	err := svc.DeleteBlock(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, model.ErrBlockNotFound)
}

func TestCatalogService_ListBlocks_Pagination(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	for i := 0; i < 5; i++ {
		day := time.Date(2026, 1, 5+i, 0, 0, 0, 0, time.UTC)
		_, err := svc.CreateBlock(context.Background(), CreateBlockInput{
			StartsAt: day.Add(8 * time.Hour),
			EndsAt:   day.Add(9 * time.Hour),
		})
		require.NoError(t, err)
	}

	blocks, total, err := svc.ListBlocks(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, blocks, 2)

	rest, _, err := svc.ListBlocks(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}
