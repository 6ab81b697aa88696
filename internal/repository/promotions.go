package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/encartelab/flyer-tracker/internal/common"
	"github.com/encartelab/flyer-tracker/internal/entity"
)

// CreatePromotionRequest wraps parameters for inserting one promotion row.
type CreatePromotionRequest struct {
	FlyerID           int64
	ProductID         int64
	PriceAmount       float64
	StandardizedUnit  string
	StandardizedValue float64
	PricePerUnit      float64
}

type PromotionRepository interface {
	Create(ctx context.Context, req *CreatePromotionRequest) (int64, error)
	// ListRows returns promotions joined with flyer and product columns,
	// optionally restricted to a created-at window (inclusive).
	ListRows(ctx context.Context, from, to *time.Time) ([]*entity.PromotionRow, error)
}

type promotionRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewPromotionRepository(db *DB, logger *slog.Logger) PromotionRepository {
	return &promotionRepository{db: db, logger: logger}
}

func (r *promotionRepository) Create(ctx context.Context, req *CreatePromotionRequest) (int64, error) {
	var id int64
	err := r.db.Builder.
		Insert("promotions").
		Columns("flyer_id", "product_id", "price_amount", "standardized_unit", "standardized_value", "price_per_unit").
		Values(req.FlyerID, req.ProductID, req.PriceAmount, req.StandardizedUnit, req.StandardizedValue, req.PricePerUnit).
		Suffix("RETURNING id").
		RunWith(r.db.SQL).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		r.logger.Error("failed to create promotion",
			"flyer_id", req.FlyerID, "product_id", req.ProductID, "error", err)
		return 0, fmt.Errorf("%w: %w", common.ErrPromotionInsert, err)
	}
	return id, nil
}

func (r *promotionRepository) ListRows(ctx context.Context, from, to *time.Time) ([]*entity.PromotionRow, error) {
	q := r.db.Builder.
		Select(
			"f.merchant_name", "f.promotion_expiry", "f.artifact_path",
			"c.product_name", "c.brand",
			"p.price_amount", "p.standardized_unit", "p.standardized_value", "p.price_per_unit",
			"p.created_at",
		).
		From("promotions p").
		Join("flyers f ON f.id = p.flyer_id").
		Join("catalog_products c ON c.id = p.product_id").
		OrderBy("p.created_at", "p.id")
	if from != nil {
		q = q.Where(sq.GtOrEq{"p.created_at": *from})
	}
	if to != nil {
		q = q.Where(sq.LtOrEq{"p.created_at": *to})
	}

	rows, err := q.RunWith(r.db.SQL).QueryContext(ctx)
	if err != nil {
		r.logger.Error("failed to list promotions", "error", err)
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var result []*entity.PromotionRow
	for rows.Next() {
		var row entity.PromotionRow
		if err := rows.Scan(
			&row.MerchantName, &row.PromotionExpiry, &row.ArtifactPath,
			&row.ProductName, &row.Brand,
			&row.PriceAmount, &row.StandardizedUnit, &row.StandardizedValue, &row.PricePerUnit,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("promotion rows: %w", err)
	}
	return result, nil
}
