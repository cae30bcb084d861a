package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores one cart per shopper session.
type Repository interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionPersister binds a Repository to one session, satisfying the cart persistence contract.
type SessionPersister struct {
	Repo      Repository
	SessionID string
}

func (p SessionPersister) LoadCart(ctx context.Context) ([]domain.CartLine, error) {
	return p.Repo.Load(ctx, p.SessionID)
}

func (p SessionPersister) SaveCart(ctx context.Context, lines []domain.CartLine) error {
	return p.Repo.Save(ctx, p.SessionID, lines)
}
