package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// DefaultChannel is the NOTIFY channel the catalog trigger writes to.
const DefaultChannel = "catalog_changes"

// Postgres listens for NOTIFY messages sent by the products table trigger.
type Postgres struct {
	pool    *pgxpool.Pool
	channel string
	logger  *zap.Logger
	backoff time.Duration
}

// NewPostgres builds a LISTEN/NOTIFY feed.
func NewPostgres(pool *pgxpool.Pool, channel string, logger *zap.Logger) *Postgres {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, channel: channel, logger: logger, backoff: time.Second}
}

// Subscribe implements reconcile.ChangeFeed. The first LISTEN happens before it returns so no notification sent
// after Subscribe is missed. After a dropped connection the feed re-listens and emits a synthetic event, since
// notifications sent while disconnected are lost.
func (f *Postgres) Subscribe(ctx context.Context) (<-chan domain.CatalogEvent, error) {
	conn, err := f.listen(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan domain.CatalogEvent)
	go f.loop(ctx, conn, out)
	return out, nil
}

func (f *Postgres) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", f.channel, err)
	}
	return conn, nil
}

func (f *Postgres) loop(ctx context.Context, conn *pgxpool.Conn, out chan<- domain.CatalogEvent) {
	defer close(out)
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			conn.Release()
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn("catalog listen failed", zap.String("channel", f.channel), zap.Error(err))
			conn = f.reconnect(ctx)
			if conn == nil {
				return
			}
			if !send(ctx, out, domain.CatalogEvent{Op: "RESYNC"}) {
				conn.Release()
				return
			}
			continue
		}
		if !send(ctx, out, decodeEvent([]byte(n.Payload), f.logger)) {
			conn.Release()
			return
		}
	}
}

func (f *Postgres) reconnect(ctx context.Context) *pgxpool.Conn {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.backoff):
		}
		conn, err := f.listen(ctx)
		if err == nil {
			return conn
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		f.logger.Warn("catalog relisten failed", zap.Error(err))
	}
}

func send(ctx context.Context, out chan<- domain.CatalogEvent, ev domain.CatalogEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// decodeEvent never fails: an unreadable payload is still a change notification.
func decodeEvent(payload []byte, logger *zap.Logger) domain.CatalogEvent {
	var ev domain.CatalogEvent
	if len(payload) == 0 || string(payload) == "null" {
		return ev
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		logger.Debug("catalog event payload not decoded", zap.Error(err))
		return domain.CatalogEvent{}
	}
	return ev
}
