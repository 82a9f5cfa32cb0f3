package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectgateway/internal/domain"
)

func TestInboundEventLedger_AtLeastOnce(t *testing.T) {
	l := NewInboundEventLedger(false)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		e := &domain.InboundEvent{DeliveryID: "d-1", Source: domain.SourceGitHub, EventType: "push"}
		require.NoError(t, l.Append(ctx, e))
		assert.NotEmpty(t, e.ID)
	}
	assert.Len(t, l.Events(), 2)
}

func TestInboundEventLedger_RejectDuplicates(t *testing.T) {
	l := NewInboundEventLedger(true)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, &domain.InboundEvent{DeliveryID: "d-1", Source: domain.SourceGitHub}))
	err := l.Append(ctx, &domain.InboundEvent{DeliveryID: "d-1", Source: domain.SourceGitHub})
	assert.ErrorIs(t, err, domain.ErrDuplicateDelivery)

	require.NoError(t, l.Append(ctx, &domain.InboundEvent{DeliveryID: "d-1", Source: domain.SourceSlack}))
	require.NoError(t, l.Append(ctx, &domain.InboundEvent{Source: domain.SourceSlack}))
	require.NoError(t, l.Append(ctx, &domain.InboundEvent{Source: domain.SourceSlack}))
	assert.Len(t, l.Events(), 4)
}
