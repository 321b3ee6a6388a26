// Package announce pushes raffle notifications to a Discord channel.
package announce

import (
	"context"
	"fmt"

	"raffler/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds announcer configuration
type Config struct {
	Token     string
	ChannelID string
}

// Announcer subscribes to the event bus and posts round announcements
type Announcer struct {
	config  Config
	session *discordgo.Session
}

// New creates an announcer, opens its Discord session and subscribes it to
// the raffle events
func New(config Config, eventBus *events.Bus) (*Announcer, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening discord session: %w", err)
	}

	a := &Announcer{
		config:  config,
		session: dg,
	}

	eventBus.Subscribe(events.EventTypeSelectionRequested, a.handleSelectionRequested)
	eventBus.Subscribe(events.EventTypeWinnerSelected, a.handleWinnerSelected)

	return a, nil
}

func (a *Announcer) handleSelectionRequested(ctx context.Context, event events.Event) {
	e, ok := event.(events.SelectionRequestedEvent)
	if !ok {
		return
	}

	message := fmt.Sprintf("🎟️ Round %d is closed! Drawing a winner among %d entries (pot: %d)...",
		e.RoundNumber, e.EntrantCount, e.PoolBalance)
	a.send(message)
}

func (a *Announcer) handleWinnerSelected(ctx context.Context, event events.Event) {
	e, ok := event.(events.WinnerSelectedEvent)
	if !ok {
		return
	}

	message := fmt.Sprintf("🎉 Round %d winner: **%s** takes %d! A new round is open.",
		e.RoundNumber, e.ParticipantID, e.Payout)
	a.send(message)
}

func (a *Announcer) send(message string) {
	if _, err := a.session.ChannelMessageSend(a.config.ChannelID, message); err != nil {
		log.WithError(err).WithField("channel", a.config.ChannelID).Error("Failed to send announcement")
	}
}

// Close shuts down the Discord session
func (a *Announcer) Close() error {
	return a.session.Close()
}
