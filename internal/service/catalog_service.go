package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/epicerie-solidaire/booking-core/internal/calendar"
	"github.com/epicerie-solidaire/booking-core/internal/model"
	"github.com/epicerie-solidaire/booking-core/internal/repository"
)

const (
	DefaultIntervalMinutes  = 15
	DefaultIntervalCapacity = 3
)

// CatalogService управляет родительскими окнами и нарезкой их на интервалы.
// Нулевые defaultMinutes/defaultCapacity заменяются константами пакета.
type CatalogService struct {
	blocks    repository.BlockRepository
	intervals repository.IntervalRepository

	defaultMinutes  int
	defaultCapacity int
}

func NewCatalogService(
	blocks repository.BlockRepository,
	intervals repository.IntervalRepository,
	defaultMinutes, defaultCapacity int,
) *CatalogService {
	if defaultMinutes <= 0 {
		defaultMinutes = DefaultIntervalMinutes
	}
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultIntervalCapacity
	}
	return &CatalogService{
		blocks:          blocks,
		intervals:       intervals,
		defaultMinutes:  defaultMinutes,
		defaultCapacity: defaultCapacity,
	}
}

// CreateBlockInput — параметры нового окна приёма.
type CreateBlockInput struct {
	StartsAt         time.Time
	EndsAt           time.Time
	IntervalMinutes  int
	IntervalCapacity int
}

func (s *CatalogService) CreateBlock(ctx context.Context, in CreateBlockInput) (*model.SlotBlock, error) {
	tr, err := calendar.NormalizeTimeRange(in.StartsAt, in.EndsAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	minutes := in.IntervalMinutes
	if minutes == 0 {
		minutes = s.defaultMinutes
	}
	capacity := in.IntervalCapacity
	if capacity == 0 {
		capacity = s.defaultCapacity
	}
	if minutes < 0 || capacity < 0 {
		return nil, fmt.Errorf("%w: interval minutes and capacity must be positive", model.ErrInvalidInput)
	}

	day := time.Date(tr.Start.Year(), tr.Start.Month(), tr.Start.Day(), 0, 0, 0, 0, time.UTC)

	block := &model.SlotBlock{
		ID:               uuid.New(),
		Date:             datatypes.Date(day),
		StartsAt:         tr.Start,
		EndsAt:           tr.End,
		IntervalMinutes:  minutes,
		IntervalCapacity: capacity,
		IsActive:         true,
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return block, nil
}

// GenerateIntervals нарезает окно на интервалы фиксированной длины с
// фиксированной вместимостью. Повторная генерация для уже нарезанного окна
// отклоняется: перегенерация снесла бы интервалы вместе с записями студентов.
func (s *CatalogService) GenerateIntervals(ctx context.Context, blockID string) ([]model.Interval, error) {
	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return nil, err
	}

	exists, err := s.intervals.ExistsForBlock(ctx, blockID)
	if err != nil {
		return nil, fmt.Errorf("check existing intervals: %w", err)
	}
	if exists {
		return nil, model.ErrIntervalsExist
	}

	tr := calendar.TimeRange{Start: block.StartsAt, End: block.EndsAt}
	ranges, err := calendar.SplitToTimeSlots(tr, time.Duration(block.IntervalMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	intervals := make([]model.Interval, 0, len(ranges))
	for _, r := range ranges {
		blockRef := block.ID
		intervals = append(intervals, model.Interval{
			ID:            uuid.New(),
			BlockID:       &blockRef,
			Date:          block.Date,
			StartsAt:      r.Start,
			EndsAt:        r.End,
			CapacityTotal: block.IntervalCapacity,
			CapacityLeft:  block.IntervalCapacity,
			IsActive:      true,
		})
	}

	if err := s.intervals.CreateBatch(ctx, intervals); err != nil {
		return nil, fmt.Errorf("insert intervals: %w", err)
	}
	return intervals, nil
}

func (s *CatalogService) DeleteBlock(ctx context.Context, id string) error {
	return s.blocks.DeleteCascade(ctx, id)
}

func (s *CatalogService) ListBlocks(ctx context.Context, limit, offset int) ([]model.SlotBlock, int64, error) {
	return s.blocks.List(ctx, limit, offset)
}

// ListAvailability возвращает активные интервалы на день c остатком мест.
func (s *CatalogService) ListAvailability(ctx context.Context, day time.Time) ([]model.Interval, error) {
	return s.intervals.ListActiveByDate(ctx, day)
}
