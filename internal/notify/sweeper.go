package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

// VehicleLister is the part of the vehicle store the sweeper reads.
type VehicleLister interface {
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
}

// AlertObserver receives the alerts of every sweep.
type AlertObserver interface {
	ObserveAlerts(alerts []fleet.Alert)
}

// Sweeper periodically compiles fleet alerts and broadcasts them.
// Publisher and Observer are optional.
type Sweeper struct {
	Vehicles  VehicleLister
	Publisher Publisher
	Observer  AlertObserver
	Interval  time.Duration
	Now       func() time.Time

	// OnPublished is called after each successful broadcast.
	OnPublished func()
}

// Sweep compiles alerts for the whole fleet once and publishes them.
func (s *Sweeper) Sweep(ctx context.Context) (AlertMessage, error) {
	vehicles, err := s.Vehicles.FindVehicles(ctx)
	if err != nil {
		return AlertMessage{}, err
	}

	now := s.Now()
	alerts := fleet.CompileAlerts(vehicles, fleet.AllVehicles, now)
	overdue, upcoming := fleet.CountAlerts(alerts)
	msg := AlertMessage{
		GeneratedAt: now,
		Date:        fleet.FormatDate(now),
		Overdue:     overdue,
		Upcoming:    upcoming,
		Alerts:      alerts,
	}

	if s.Observer != nil {
		s.Observer.ObserveAlerts(alerts)
	}
	if s.Publisher == nil {
		return msg, nil
	}
	if err := s.Publisher.Publish(ctx, msg); err != nil {
		return msg, err
	}
	if s.OnPublished != nil {
		s.OnPublished()
	}
	return msg, nil
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// A non-positive Interval sweeps once and returns.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval <= 0 {
		log.WithField("interval", s.Interval).Warn("Alert sweeper interval is not positive, sweeping once")
		if _, err := s.Sweep(ctx); err != nil {
			log.WithError(err).Error("Alert sweep failed")
		}
		return
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		msg, err := s.Sweep(ctx)
		if err != nil {
			log.WithError(err).Error("Alert sweep failed")
		} else {
			log.WithFields(log.Fields{
				"overdue":  msg.Overdue,
				"upcoming": msg.Upcoming,
			}).Info("Alert sweep completed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
