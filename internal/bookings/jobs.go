package bookings

import (
	"context"
	"time"

	"transitly/pkg/logger"
)

// ReaperConfig contains configuration for the hold expiry sweeper
type ReaperConfig struct {
	Interval time.Duration
}

// Reaper periodically returns expired holds to the seat pool. Expiry
// is lazy everywhere else (expired holds cannot convert), so the
// sweeper only has to keep availableSeats honest for browsing
// passengers.
type Reaper struct {
	service Service
	config  ReaperConfig
	logger  *logger.Logger
	done    chan struct{}
}

// NewReaper creates a new hold expiry sweeper
func NewReaper(service Service, config ReaperConfig) *Reaper {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Minute
	}
	return &Reaper{
		service: service,
		config:  config,
		logger:  logger.GetDefault(),
		done:    make(chan struct{}),
	}
}

// Start launches the sweep loop
func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
	r.logger.Info("Hold reaper started", "interval", r.config.Interval.String())
}

// Stop terminates the sweep loop
func (r *Reaper) Stop() {
	close(r.done)
	r.logger.Info("Hold reaper stopped")
}

func (r *Reaper) run(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-r.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	count, err := r.service.ReclaimExpired(ctx)
	if err != nil {
		r.logger.ErrorWithContext(ctx, "Hold sweep failed", err, map[string]interface{}{
			"reclaimed": count,
		})
		return
	}
	if count > 0 {
		r.logger.InfoWithContext(ctx, "Expired holds reclaimed", map[string]interface{}{
			"reclaimed": count,
		})
	}
}
