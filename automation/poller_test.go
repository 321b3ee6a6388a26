package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"raffler/models"
	"raffler/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func eligibleReport() *models.EligibilityReport {
	return &models.EligibilityReport{
		Eligible:       true,
		Phase:          models.RafflePhaseOpen,
		EntrantCount:   3,
		PoolBalance:    300,
		TimeSinceReset: 10 * time.Minute,
		Interval:       5 * time.Minute,
		CheckedAt:      time.Now(),
	}
}

func TestPoller_RunOnce_TriggersDraw(t *testing.T) {
	ctx := context.Background()
	raffle := new(service.MockRaffleService)
	poller := NewPoller(raffle, time.Second)

	raffle.On("CheckEligibility", ctx).Return(eligibleReport(), nil)
	raffle.On("PerformDraw", ctx).Return("req-1", nil)

	err := poller.RunOnce(ctx)

	require.NoError(t, err)
	raffle.AssertExpectations(t)
}

func TestPoller_RunOnce_NotEligible(t *testing.T) {
	ctx := context.Background()
	raffle := new(service.MockRaffleService)
	poller := NewPoller(raffle, time.Second)

	report := eligibleReport()
	report.Eligible = false
	report.EntrantCount = 0
	raffle.On("CheckEligibility", ctx).Return(report, nil)

	err := poller.RunOnce(ctx)

	require.NoError(t, err)
	raffle.AssertNotCalled(t, "PerformDraw")
}

func TestPoller_RunOnce_LosesRaceAtTrigger(t *testing.T) {
	ctx := context.Background()
	raffle := new(service.MockRaffleService)
	poller := NewPoller(raffle, time.Second)

	// Eligible at probe time, but another trigger got there first
	raffle.On("CheckEligibility", ctx).Return(eligibleReport(), nil)
	raffle.On("PerformDraw", ctx).Return("", &models.TriggerNotEligibleError{
		Report: models.EligibilityReport{Phase: models.RafflePhaseResolving},
	})

	err := poller.RunOnce(ctx)

	assert.NoError(t, err)
}

func TestPoller_RunOnce_DrawError(t *testing.T) {
	ctx := context.Background()
	raffle := new(service.MockRaffleService)
	poller := NewPoller(raffle, time.Second)

	raffle.On("CheckEligibility", ctx).Return(eligibleReport(), nil)
	raffle.On("PerformDraw", ctx).Return("", errors.New("oracle unavailable"))

	err := poller.RunOnce(ctx)

	assert.Error(t, err)
}

func TestPoller_RunOnce_CheckError(t *testing.T) {
	ctx := context.Background()
	raffle := new(service.MockRaffleService)
	poller := NewPoller(raffle, time.Second)

	raffle.On("CheckEligibility", ctx).Return(nil, errors.New("database down"))

	err := poller.RunOnce(ctx)

	assert.Error(t, err)
	raffle.AssertNotCalled(t, "PerformDraw")
}

func TestPoller_StartStop(t *testing.T) {
	raffle := new(service.MockRaffleService)
	raffle.On("CheckEligibility", mock.Anything).Return(eligibleReport(), nil).Maybe()
	raffle.On("PerformDraw", mock.Anything).Return("req-1", nil).Maybe()

	poller := NewPoller(raffle, time.Hour)
	require.NoError(t, poller.Start())
	poller.Stop()
}
