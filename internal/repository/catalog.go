package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/encartelab/flyer-tracker/internal/common"
)

// CatalogRepository resolves deduplicated (product name, brand) identities.
// Brand is "" when the flyer shows none, so the key is total and the unique
// constraint can hold.
type CatalogRepository interface {
	// GetOrCreate returns the id for the exact (productName, brand) pair,
	// inserting it when missing. The insert races through the unique
	// constraint, so two concurrent submissions converge on a single row.
	GetOrCreate(ctx context.Context, productName, brand string) (int64, bool, error)
}

type catalogRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCatalogRepository(db *DB, logger *slog.Logger) CatalogRepository {
	return &catalogRepository{db: db, logger: logger}
}

func (r *catalogRepository) GetOrCreate(ctx context.Context, productName, brand string) (int64, bool, error) {
	var id int64
	err := r.db.Builder.
		Select("id").
		From("catalog_products").
		Where("product_name = ? AND brand = ?", productName, brand).
		RunWith(r.db.SQL).
		QueryRowContext(ctx).
		Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("failed to look up catalog product",
			"product_name", productName, "brand", brand, "error", err)
		return 0, false, fmt.Errorf("%w: %w", common.ErrCatalogLookup, err)
	}

	// The no-op DO UPDATE makes RETURNING yield the surviving row's id when
	// a concurrent insert wins the race.
	err = r.db.Builder.
		Insert("catalog_products").
		Columns("product_name", "brand").
		Values(productName, brand).
		Suffix("ON CONFLICT (product_name, brand) DO UPDATE SET product_name = excluded.product_name RETURNING id").
		RunWith(r.db.SQL).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		r.logger.Error("failed to insert catalog product",
			"product_name", productName, "brand", brand, "error", err)
		return 0, false, fmt.Errorf("%w: %w", common.ErrCatalogInsert, err)
	}

	r.logger.Info("catalog product created",
		"product_id", id, "product_name", productName, "brand", brand)
	return id, true, nil
}
