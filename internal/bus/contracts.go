package bus

import (
	"context"

	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// EventBus broadcasts ephemeral dashboard events to every live subscriber,
// across however many server processes are running. Emits are fire-and-forget:
// there is no acknowledgment and no delivery to disconnected clients; callers
// log the returned error and move on.
type EventBus interface {
	EmitMessageReceived(ctx context.Context, messageID, sender, text string) error
	EmitMessageAnalyzed(ctx context.Context, messageID string, analysis domain.Analysis) error
	EmitStatsUpdated(ctx context.Context, stats domain.DashboardStats) error
	EmitError(ctx context.Context, message string) error
}

// Subscriber hands a live event stream to transport collaborators (the
// websocket hub). The returned cancel func releases the subscription; the
// channel is closed afterwards.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.Event, func(), error)
}
