package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types published through the outbox.
type EventType string

const (
	EventSeasonCreated      EventType = "league.season.created"
	EventMatchFinished      EventType = "league.match.finished"
	EventWagerPlaced        EventType = "league.wager.placed"
	EventWagerSettled       EventType = "league.wager.settled"
	EventPredictionSettled  EventType = "league.prediction.settled"
	EventLedgerEntryPosted  EventType = "league.ledger.entry.posted"
	EventClockAdvanced      EventType = "league.clock.advanced"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateSeason  AggregateType = "season"
	AggregateMatch   AggregateType = "match"
	AggregateWager   AggregateType = "wager"
	AggregateAccount AggregateType = "account"
)

// OutboxDraft is the payload written to the event_outbox table. Drafts
// are written in the same step as the state change they describe and
// relayed to Kafka by the outbox poller.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
