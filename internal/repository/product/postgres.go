package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const productColumns = `id, COALESCE(key, ''), name, COALESCE(description, ''), price, original_price, in_stock, rating,
       images, lengths, lace_sizes, densities, created_at, updated_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Key,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.InStock,
		&p.Rating,
		&p.Images,
		&p.Lengths,
		&p.LaceSizes,
		&p.Densities,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	variant.NormalizeOnLoad(&p)
	return p, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC, id
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Warn("list failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn("list rows failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("listed", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Warn("get failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE key = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Warn("get by key failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, key, name, description, price, original_price, in_stock, rating, images, lengths, lace_sizes, densities)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    key = EXCLUDED.key,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    original_price = EXCLUDED.original_price,
    in_stock = EXCLUDED.in_stock,
    rating = EXCLUDED.rating,
    images = EXCLUDED.images,
    lengths = EXCLUDED.lengths,
    lace_sizes = EXCLUDED.lace_sizes,
    densities = EXCLUDED.densities,
    updated_at = now()
RETURNING created_at, updated_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Key,
		product.Name,
		product.Description,
		product.Price,
		product.OriginalPrice,
		product.InStock,
		product.Rating,
		jsonList(product.Images),
		jsonList(product.Lengths),
		jsonList(product.LaceSizes),
		jsonList(product.Densities),
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.Warn("upsert failed", zap.String("id", product.ID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("upserted", zap.String("id", res.ID), zap.String("key", res.Key))
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted", zap.String("id", id))
	return nil
}

// jsonList keeps empty option lists as [] instead of null in the jsonb columns.
func jsonList[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
