package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Load returns an empty cart for a session that was never saved.
func (r *postgresRepo) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	const q = `
SELECT lines
FROM cart_sessions
WHERE session_id = $1
`
	var lines []domain.CartLine
	if err := r.pool.QueryRow(ctx, q, sessionID).Scan(&lines); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.CartLine{}, nil
		}
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (r *postgresRepo) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	const q = `
INSERT INTO cart_sessions (session_id, lines, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (session_id) DO UPDATE SET
    lines = EXCLUDED.lines,
    updated_at = now()
`
	if lines == nil {
		lines = []domain.CartLine{}
	}
	_, err := r.pool.Exec(ctx, q, sessionID, lines)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
