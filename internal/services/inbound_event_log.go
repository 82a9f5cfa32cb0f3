package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"projectgateway/internal/domain"
)

type inboundEventLog struct {
	ledger         domain.EventLedger
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewInboundEventLog returns an InboundEventLog that appends to ledger. Failures are logged, never returned.
func NewInboundEventLog(ledger domain.EventLedger, logger *slog.Logger, timeout time.Duration) domain.InboundEventLog {
	return &inboundEventLog{ledger: ledger, logger: logger, now: time.Now, contextTimeout: timeout}
}

func (l *inboundEventLog) Record(ctx context.Context, deliveryID, source, eventType string, payload []byte) domain.RecordOutcome {
	ctx, cancel := context.WithTimeout(ctx, l.contextTimeout)
	defer cancel()

	sum := blake3.Sum256(payload)
	e := &domain.InboundEvent{
		DeliveryID:    deliveryID,
		Source:        source,
		EventType:     eventType,
		Payload:       jsonPayload(payload),
		PayloadDigest: hex.EncodeToString(sum[:]),
		ReceivedAt:    l.now().UTC(),
	}
	err := l.ledger.Append(ctx, e)
	switch {
	case err == nil:
		return domain.RecordStored
	case errors.Is(err, domain.ErrDuplicateDelivery):
		l.logger.InfoContext(ctx, "duplicate inbound delivery", "source", source, "delivery_id", deliveryID)
		return domain.RecordDuplicate
	default:
		l.logger.ErrorContext(ctx, "inbound event not recorded",
			"source", source, "event_type", eventType, "delivery_id", deliveryID, "err", err)
		return domain.RecordFailed
	}
}

// jsonPayload stores JSON bodies as-is and anything else (form posts) as a JSON string.
func jsonPayload(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	b, _ := json.Marshal(string(payload))
	return b
}
