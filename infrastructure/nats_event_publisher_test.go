package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"arena-ledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_LocalHandlersWithoutClient(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	var calls []string
	publisher.RegisterLocalHandler(events.EventTypeMatchSettled, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "first")
		return errors.New("discord unavailable")
	})
	publisher.RegisterLocalHandler(events.EventTypeMatchSettled, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := publisher.Publish(events.MatchSettledEvent{MatchID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)

	// Other event types do not reach these handlers
	require.NoError(t, publisher.Publish(events.TournamentClosedEvent{TournamentID: 1}))
	assert.Len(t, calls, 2)
}

func TestNATSEventPublisher_EnsureStreamWithoutClient(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	assert.Error(t, publisher.EnsureSettlementEventStream())
}

func TestNATSEventPublisher_EncodeEnvelope(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())
	winner := "player-b"

	data, eventID, err := publisher.encode(events.MatchSettledEvent{MatchID: "m1", Game: "chess", Winner: &winner, Payout: 100, EntryFee: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, eventID)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, eventID, envelope.EventID)
	assert.Equal(t, "match_settled", envelope.EventType)
	assert.Equal(t, "arena-ledger", envelope.SourceService)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.MatchSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "m1", payload.MatchID)
	require.NotNil(t, payload.Winner)
	assert.Equal(t, "player-b", *payload.Winner)
	assert.Equal(t, int64(100), payload.Payout)
}

func TestNATSClient_PublishWithoutConnection(t *testing.T) {
	client := NewNATSClient("nats://localhost:4222")
	assert.False(t, client.IsConnected())
	assert.Error(t, client.Publish(context.Background(), "matches.settled", []byte("{}")))
	assert.NoError(t, client.Close())
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "ledger.balance_changed"},
		{events.MatchSettledEvent{}, "matches.settled"},
		{events.TournamentClosedEvent{}, "tournaments.closed"},
		{events.PrizesDistributedEvent{}, "tournaments.prizes_distributed"},
		{events.ReferralRewardedEvent{}, "referrals.rewarded"},
		{events.DepositConfirmedEvent{}, "deposits.confirmed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
			assert.Contains(t, mapper.GetAllSubjects(), subject)
		})
	}

	assert.Equal(t, events.EventType("other.subject"), mapper.MapSubjectToEventType("other.subject"))
}
