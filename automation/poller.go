// Package automation drives the raffle's scheduled upkeep.
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffler/models"
	"raffler/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Poller periodically probes the raffle's eligibility predicate and fires
// the draw when it holds. The probe is advisory; PerformDraw re-validates
// under its own lock, so losing a race to another poller is harmless.
type Poller struct {
	raffle   service.RaffleService
	interval time.Duration
	cron     *cron.Cron
}

// NewPoller creates a new upkeep poller
func NewPoller(raffle service.RaffleService, interval time.Duration) *Poller {
	return &Poller{
		raffle:   raffle,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start schedules the upkeep ticks
func (p *Poller) Start() error {
	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, p.tick); err != nil {
		return fmt.Errorf("failed to schedule upkeep: %w", err)
	}
	p.cron.Start()

	log.WithField("interval", p.interval).Info("Upkeep poller started")
	return nil
}

// Stop cancels the schedule and waits for a running tick to finish
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	log.Info("Upkeep poller stopped")
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		log.WithError(err).Error("Upkeep tick failed")
	}
}

// RunOnce performs a single probe-and-act cycle
func (p *Poller) RunOnce(ctx context.Context) error {
	report, err := p.raffle.CheckEligibility(ctx)
	if err != nil {
		return fmt.Errorf("failed to check eligibility: %w", err)
	}

	if !report.Eligible {
		log.WithFields(log.Fields{
			"phase":            report.Phase,
			"entrants":         report.EntrantCount,
			"pool_balance":     report.PoolBalance,
			"time_since_reset": report.TimeSinceReset,
		}).Debug("Draw not eligible")
		return nil
	}

	requestID, err := p.raffle.PerformDraw(ctx)
	if err != nil {
		var notEligible *models.TriggerNotEligibleError
		if errors.As(err, &notEligible) {
			// State changed between probe and act; the next tick retries
			log.WithFields(log.Fields{
				"phase":        notEligible.Report.Phase,
				"entrants":     notEligible.Report.EntrantCount,
				"pool_balance": notEligible.Report.PoolBalance,
			}).Info("Draw no longer eligible at trigger time")
			return nil
		}
		return fmt.Errorf("failed to perform draw: %w", err)
	}

	log.WithField("request_id", requestID).Info("Upkeep triggered draw")
	return nil
}
