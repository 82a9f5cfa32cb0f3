package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Inbound event sources.
const (
	SourceSlack  = "slack"
	SourceGitHub = "github"
)

// InboundEvent is an audit record of a received external delivery.
type InboundEvent struct {
	ID            string
	DeliveryID    string
	Source        string
	EventType     string
	Payload       json.RawMessage
	PayloadDigest string
	ReceivedAt    time.Time
}

// EventLedger appends inbound events. Implementations may reject duplicates with ErrDuplicateDelivery.
type EventLedger interface {
	Append(ctx context.Context, e *InboundEvent) error
}

// RecordOutcome is what happened to a Record call. It never blocks event processing.
type RecordOutcome int

const (
	RecordStored RecordOutcome = iota
	RecordDuplicate
	RecordFailed
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordStored:
		return "stored"
	case RecordDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// InboundEventLog records deliveries on a best-effort basis.
type InboundEventLog interface {
	Record(ctx context.Context, deliveryID, source, eventType string, payload []byte) RecordOutcome
}
