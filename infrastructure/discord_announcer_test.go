package infrastructure

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMessenger records the embeds sent to Discord
type mockMessenger struct {
	mu        sync.Mutex
	channelID string
	embeds    []*discordgo.MessageEmbed
	contexts  []context.Context
	sendError error
	block     chan struct{}
}

func (m *mockMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.block != nil {
		<-m.block
	}

	cfg := &discordgo.RequestConfig{Request: httptest.NewRequest("POST", "/", nil)}
	for _, option := range options {
		option(cfg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts = append(m.contexts, cfg.Request.Context())
	if m.sendError != nil {
		return nil, m.sendError
	}
	m.channelID = channelID
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{ID: "test_message_id"}, nil
}

func (m *mockMessenger) sent() []*discordgo.MessageEmbed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*discordgo.MessageEmbed(nil), m.embeds...)
}

func TestDiscordAnnouncer_MatchSettled(t *testing.T) {
	messenger := &mockMessenger{}
	announcer := NewDiscordAnnouncer(messenger, "announce-channel")
	winner := "player-b"

	err := announcer.Handle(context.Background(), events.MatchSettledEvent{
		MatchID:  "m1",
		Game:     "chess",
		Winner:   &winner,
		Payout:   1500,
		EntryFee: 750,
	})
	require.NoError(t, err)

	require.Len(t, messenger.embeds, 1)
	assert.Equal(t, "announce-channel", messenger.channelID)
	embed := messenger.embeds[0]
	assert.Contains(t, embed.Title, "chess")
	assert.Equal(t, "Match ID: m1", embed.Footer.Text)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "player-b", embed.Fields[0].Value)
	assert.Equal(t, "1,500", embed.Fields[1].Value)
}

func TestDiscordAnnouncer_Draw(t *testing.T) {
	messenger := &mockMessenger{}
	announcer := NewDiscordAnnouncer(messenger, "c")

	require.NoError(t, announcer.Handle(context.Background(), events.MatchSettledEvent{MatchID: "m2", Game: "ludo", IsDraw: true}))
	require.Len(t, messenger.embeds, 1)
	assert.Equal(t, "Draw, no payout", messenger.embeds[0].Description)
	assert.Empty(t, messenger.embeds[0].Fields)
}

func TestDiscordAnnouncer_PrizesDistributed(t *testing.T) {
	messenger := &mockMessenger{}
	announcer := NewDiscordAnnouncer(messenger, "c")

	err := announcer.Handle(context.Background(), events.PrizesDistributedEvent{
		TournamentID: 3,
		Name:         "Friday Trivia",
		Currency:     entities.CurrencyCoin,
		PrizePool:    1000,
		Payouts: []entities.PrizePayout{
			{Rank: 1, UserID: "alice", Amount: 500},
			{Rank: 2, UserID: "a-very-long-user-identifier", Amount: 200},
		},
		HouseAmount: 300,
	})
	require.NoError(t, err)

	embed := messenger.embeds[0]
	assert.Equal(t, "📊 Friday Trivia results", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Contains(t, embed.Fields[0].Value, "alice")
	assert.Contains(t, embed.Fields[0].Value, "a-very-long-use...")
	assert.Equal(t, "1,000 coin", embed.Fields[1].Value)
	assert.Equal(t, "300", embed.Fields[2].Value)
}

func TestDiscordAnnouncer_IgnoresOtherEvents(t *testing.T) {
	messenger := &mockMessenger{}
	announcer := NewDiscordAnnouncer(messenger, "c")

	require.NoError(t, announcer.Handle(context.Background(), events.BalanceChangeEvent{}))
	assert.Empty(t, messenger.embeds)
}

func TestDiscordAnnouncer_SendError(t *testing.T) {
	messenger := &mockMessenger{sendError: errors.New("rate limited")}
	announcer := NewDiscordAnnouncer(messenger, "c")

	err := announcer.Handle(context.Background(), events.ReferralRewardedEvent{ReferrerID: "r", ReferredUserID: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "referral_rewarded")
}

func TestDiscordAnnouncer_RegisteredHandlersRunOnPublish(t *testing.T) {
	messenger := &mockMessenger{}
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	announcer := NewDiscordAnnouncer(messenger, "c")
	announcer.Register(publisher)

	require.NoError(t, publisher.Publish(events.ReferralRewardedEvent{ReferrerID: "r", ReferredUserID: "u", ReferrerReward: 100, RefereeReward: 50}))
	require.NoError(t, publisher.Publish(events.DepositConfirmedEvent{UserID: "u"}))
	announcer.Wait()

	embeds := messenger.sent()
	require.Len(t, embeds, 1)
	assert.Equal(t, "r +100 coin", embeds[0].Fields[0].Value)

	// Posts get their own deadline
	require.Len(t, messenger.contexts, 1)
	deadline, ok := messenger.contexts[0].Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(announceTimeout), deadline, announceTimeout)
}

func TestDiscordAnnouncer_SlowDiscordDoesNotBlockPublish(t *testing.T) {
	messenger := &mockMessenger{block: make(chan struct{})}
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	announcer := NewDiscordAnnouncer(messenger, "c")
	announcer.Register(publisher)

	published := make(chan error, 1)
	go func() {
		published <- publisher.Publish(events.MatchSettledEvent{MatchID: "m1", Game: "chess", IsDraw: true})
	}()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publish waited on the Discord post")
	}
	assert.Empty(t, messenger.sent())

	close(messenger.block)
	announcer.Wait()
	assert.Len(t, messenger.sent(), 1)
}

func TestDiscordAnnouncer_BackgroundSendErrorIsLogged(t *testing.T) {
	messenger := &mockMessenger{sendError: errors.New("rate limited")}
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	announcer := NewDiscordAnnouncer(messenger, "c")
	announcer.Register(publisher)

	require.NoError(t, publisher.Publish(events.ReferralRewardedEvent{ReferrerID: "r", ReferredUserID: "u"}))
	announcer.Wait()

	assert.Empty(t, messenger.sent())
}

func TestFormatAmount(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-2500:    "-2,500",
		-100:     "-100",
		10000000: "10,000,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatAmount(in))
	}
}
