package infrastructure

import (
	"fmt"

	"arena-ledger/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeBalanceChange:     "ledger.balance_changed",
	events.EventTypeMatchSettled:      "matches.settled",
	events.EventTypeTournamentClosed:  "tournaments.closed",
	events.EventTypePrizesDistributed: "tournaments.prizes_distributed",
	events.EventTypeReferralRewarded:  "referrals.rewarded",
	events.EventTypeDepositConfirmed:  "deposits.confirmed",
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"ledger.balance_changed",
		"matches.settled",
		"tournaments.closed",
		"tournaments.prizes_distributed",
		"referrals.rewarded",
		"deposits.confirmed",
	}
}
