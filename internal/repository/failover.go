package repository

import (
	"context"
	"sync/atomic"
	"time"

	"karigar/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotCache serves from the primary cache until it errors, then
// switches to the fallback and retries the primary after a minute.
type FailoverSlotCache struct {
	primary  domain.SlotCache
	fallback domain.SlotCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// lastCheck holds unix nanos of the last failed primary attempt; it is
	// read and written from concurrent requests alongside isDown.
	lastCheck atomic.Int64
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSlotCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
	r.lastCheck.Store(time.Now().UnixNano())
	r.isDown.Store(true)
}

func (r *FailoverSlotCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverSlotCache) GetOccupied(ctx context.Context, serviceProfileID, date string) ([]string, bool, error) {
	if !r.isDown.Load() {
		slots, found, err := r.primary.GetOccupied(ctx, serviceProfileID, date)
		if err == nil {
			return slots, found, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && r.shouldRetryPrimary() {
		slots, found, err := r.primary.GetOccupied(ctx, serviceProfileID, date)
		if err == nil {
			r.isDown.Store(false)
			return slots, found, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetOccupied(ctx, serviceProfileID, date)
}

func (r *FailoverSlotCache) SetOccupied(ctx context.Context, serviceProfileID, date string, slots []string) error {
	if !r.isDown.Load() {
		err := r.primary.SetOccupied(ctx, serviceProfileID, date, slots)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetOccupied(ctx, serviceProfileID, date, slots)
}

func (r *FailoverSlotCache) Invalidate(ctx context.Context, serviceProfileID, date string) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, serviceProfileID, date)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Invalidate(ctx, serviceProfileID, date)
}

func (r *FailoverSlotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
