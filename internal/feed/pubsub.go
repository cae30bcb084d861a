package feed

import (
	"context"
	"errors"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// PubSub receives catalog change notifications from a Cloud Pub/Sub subscription.
type PubSub struct {
	sub    *pubsub.Subscription
	logger *zap.Logger
}

// NewPubSub builds a Pub/Sub feed.
func NewPubSub(sub *pubsub.Subscription, logger *zap.Logger) (*PubSub, error) {
	if sub == nil {
		return nil, errors.New("pubsub feed: subscription is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PubSub{sub: sub, logger: logger}, nil
}

// Subscribe implements reconcile.ChangeFeed. Messages are acked once handed to the reconciler and nacked when
// the subscriber has gone away.
func (f *PubSub) Subscribe(ctx context.Context) (<-chan domain.CatalogEvent, error) {
	out := make(chan domain.CatalogEvent)
	f.sub.ReceiveSettings.NumGoroutines = 1
	f.sub.ReceiveSettings.MaxOutstandingMessages = 1
	go func() {
		defer close(out)
		err := f.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
			ev := decodeEvent(m.Data, f.logger)
			if ev.ProductID == "" {
				ev.ProductID = m.Attributes["productId"]
			}
			if ev.Op == "" {
				ev.Op = m.Attributes["op"]
			}
			if send(ctx, out, ev) {
				m.Ack()
				return
			}
			m.Nack()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			f.logger.Warn("pubsub receive stopped", zap.String("subscription", f.sub.ID()), zap.Error(err))
		}
	}()
	return out, nil
}
