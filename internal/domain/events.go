package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewMatchFinishedEvent creates the event emitted exactly once when a
// match reaches its terminal result.
func NewMatchFinishedEvent(m *Match) OutboxDraft {
	payload, _ := json.Marshal(m)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   m.ID.String(),
		EventType:     EventMatchFinished,
		PartitionKey:  m.SeasonID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerSettledEvent creates a wager settlement event.
func NewWagerSettledEvent(w *Wager) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"wager_id":    w.ID.String(),
		"account_id":  w.AccountID.String(),
		"status":      string(w.Status),
		"payout":      w.Payout(),
		"fail_reason": w.FailReason,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   w.ID.String(),
		EventType:     EventWagerSettled,
		PartitionKey:  w.AccountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerPlacedEvent creates the event emitted when a wager is accepted
// and its stake debited.
func NewWagerPlacedEvent(w *Wager) OutboxDraft {
	payload, _ := json.Marshal(w)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   w.ID.String(),
		EventType:     EventWagerPlaced,
		PartitionKey:  w.AccountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPredictionSettledEvent creates a prediction settlement event.
func NewPredictionSettledEvent(p *Prediction) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"prediction_id": p.ID.String(),
		"account_id":    p.AccountID.String(),
		"match_id":      p.MatchID.String(),
		"status":        string(p.Status),
		"points":        p.PointsAwarded,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   p.ID.String(),
		EventType:     EventPredictionSettled,
		PartitionKey:  p.AccountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewEntryPostedEvent creates the standard ledger event for a posting.
func NewEntryPostedEvent(e *Entry) OutboxDraft {
	payload, _ := json.Marshal(e)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAccount,
		AggregateID:   e.AccountID.String(),
		EventType:     EventLedgerEntryPosted,
		PartitionKey:  e.AccountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewClockAdvancedEvent records one movement of the virtual clock and
// how many fixtures it batch-simulated on the way.
func NewClockAdvancedEvent(seasonID uuid.UUID, from, to time.Time, simulated int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"season_id": seasonID.String(),
		"from":      from,
		"to":        to,
		"simulated": simulated,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSeason,
		AggregateID:   seasonID.String(),
		EventType:     EventClockAdvanced,
		PartitionKey:  seasonID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSeasonCreatedEvent creates a season lifecycle event.
func NewSeasonCreatedEvent(s *Season, fixtureCount int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"season_id": s.ID.String(),
		"name":      s.Name,
		"teams":     len(s.TeamIDs),
		"fixtures":  fixtureCount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSeason,
		AggregateID:   s.ID.String(),
		EventType:     EventSeasonCreated,
		PartitionKey:  s.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
