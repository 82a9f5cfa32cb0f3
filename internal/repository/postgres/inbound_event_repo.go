package postgres

import (
	"context"
	"database/sql"
	"errors"

	"projectgateway/internal/domain"
)

type inboundEventRepository struct {
	DB               *sql.DB
	rejectDuplicates bool
}

// NewInboundEventRepository returns a Postgres EventLedger. With rejectDuplicates, a second delivery with the
// same (source, delivery_id) is not stored and Append returns ErrDuplicateDelivery.
func NewInboundEventRepository(db *sql.DB, rejectDuplicates bool) domain.EventLedger {
	return &inboundEventRepository{DB: db, rejectDuplicates: rejectDuplicates}
}

func (r *inboundEventRepository) Append(ctx context.Context, e *domain.InboundEvent) error {
	var deliveryID sql.NullString
	if e.DeliveryID != "" {
		deliveryID = sql.NullString{String: e.DeliveryID, Valid: true}
	}
	payload := []byte(e.Payload)

	if !r.rejectDuplicates || !deliveryID.Valid {
		query := `
			INSERT INTO inbound_events (delivery_id, source, event_type, payload, payload_digest, received_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		return r.DB.QueryRowContext(ctx, query,
			deliveryID, e.Source, e.EventType, payload, e.PayloadDigest, e.ReceivedAt,
		).Scan(&e.ID)
	}

	return r.appendUnique(ctx, e, deliveryID, payload)
}

// appendUnique holds a transaction-scoped advisory lock on (source, delivery_id) so that
// concurrent deliveries of the same event cannot both pass the existence check.
func (r *inboundEventRepository) appendUnique(ctx context.Context, e *domain.InboundEvent, deliveryID sql.NullString, payload []byte) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, e.Source, deliveryID.String); err != nil {
		return err
	}

	query := `
		INSERT INTO inbound_events (delivery_id, source, event_type, payload, payload_digest, received_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM inbound_events WHERE source = $2 AND delivery_id = $1
		)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		deliveryID, e.Source, e.EventType, payload, e.PayloadDigest, e.ReceivedAt,
	).Scan(&e.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrDuplicateDelivery
		return err
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
