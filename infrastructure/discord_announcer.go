package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// announceTimeout bounds one Discord post made after a commit
const announceTimeout = 10 * time.Second

// Embed colors
const (
	colorSuccess = 0x57F287
	colorInfo    = 0x3498DB
	colorWarning = 0xFEE75C
)

// ChannelMessenger is the part of *discordgo.Session the announcer needs
type ChannelMessenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts settlement results to a Discord channel.
// It runs as a local event handler, so it only ever sees committed settlements.
type DiscordAnnouncer struct {
	messenger ChannelMessenger
	channelID string
	timeout   time.Duration
	inflight  sync.WaitGroup
}

// NewDiscordAnnouncer creates a new announcer posting to channelID
func NewDiscordAnnouncer(messenger ChannelMessenger, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		messenger: messenger,
		channelID: channelID,
		timeout:   announceTimeout,
	}
}

// Register subscribes the announcer to the events it posts.
// Posts run in the background, each with its own deadline.
func (a *DiscordAnnouncer) Register(registry LocalHandlerRegistry) {
	registry.RegisterLocalHandler(events.EventTypeMatchSettled, a.dispatch)
	registry.RegisterLocalHandler(events.EventTypePrizesDistributed, a.dispatch)
	registry.RegisterLocalHandler(events.EventTypeReferralRewarded, a.dispatch)
}

// Wait blocks until every background post has finished
func (a *DiscordAnnouncer) Wait() {
	a.inflight.Wait()
}

// dispatch posts the event on its own goroutine, detached from the committing request
func (a *DiscordAnnouncer) dispatch(_ context.Context, event events.Event) error {
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.Handle(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Warn("Failed to post settlement announcement")
		}
	}()
	return nil
}

// Handle builds and sends the embed for a settlement event
func (a *DiscordAnnouncer) Handle(ctx context.Context, event events.Event) error {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.MatchSettledEvent:
		embed = matchSettledEmbed(e)
	case events.PrizesDistributedEvent:
		embed = prizesDistributedEmbed(e)
	case events.ReferralRewardedEvent:
		embed = referralRewardedEmbed(e)
	default:
		return nil
	}

	if _, err := a.messenger.ChannelMessageSendEmbed(a.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send %s announcement: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"channelID": a.channelID,
	}).Debug("Posted settlement announcement")
	return nil
}

func matchSettledEmbed(e events.MatchSettledEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎮 %s match settled", e.Game),
		Color:     colorSuccess,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Match ID: %s", e.MatchID),
		},
	}

	if e.IsDraw || e.Winner == nil {
		embed.Color = colorWarning
		embed.Description = "Draw, no payout"
		return embed
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Winner", Value: *e.Winner, Inline: true},
		{Name: "Payout", Value: formatAmount(e.Payout), Inline: true},
	}
	return embed
}

func prizesDistributedEmbed(e events.PrizesDistributedEvent) *discordgo.MessageEmbed {
	var table strings.Builder
	table.WriteString("```\n")
	table.WriteString("Rank  User                Prize\n")
	table.WriteString("────  ──────────────────  ──────────\n")
	for _, payout := range e.Payouts {
		user := payout.UserID
		if len(user) > 18 {
			user = user[:15] + "..."
		}
		table.WriteString(fmt.Sprintf("%-4d  %-18s  %s\n", payout.Rank, user, formatAmount(payout.Amount)))
	}
	table.WriteString("```")

	fields := []*discordgo.MessageEmbedField{}
	if len(e.Payouts) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "🏆 Winners",
			Value: table.String(),
		})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "💰 Prize Pool", Value: formatAmount(e.PrizePool) + " " + string(e.Currency), Inline: true},
		&discordgo.MessageEmbedField{Name: "🏦 House", Value: formatAmount(e.HouseAmount), Inline: true},
	)

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("📊 %s results", e.Name),
		Color:     colorInfo,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Tournament ID: %d", e.TournamentID),
		},
	}
}

func referralRewardedEmbed(e events.ReferralRewardedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🤝 Referral reward",
		Description: fmt.Sprintf("%s made a first deposit", e.ReferredUserID),
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Referrer", Value: fmt.Sprintf("%s +%s %s", e.ReferrerID, formatAmount(e.ReferrerReward), entities.CurrencyCoin), Inline: true},
			{Name: "Referee", Value: fmt.Sprintf("%s +%s %s", e.ReferredUserID, formatAmount(e.RefereeReward), entities.CurrencyCoin), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// formatAmount formats an amount with thousand separators
func formatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	str := fmt.Sprintf("%d", amount)

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}
