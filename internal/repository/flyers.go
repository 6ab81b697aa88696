package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/encartelab/flyer-tracker/internal/common"
	"github.com/encartelab/flyer-tracker/internal/entity"
)

// CreateFlyerRequest wraps parameters for inserting one flyer row.
type CreateFlyerRequest struct {
	MerchantName    string
	PromotionExpiry *string
	SourceContact   string
	ArtifactPath    string
}

type FlyerRepository interface {
	Create(ctx context.Context, req *CreateFlyerRequest) (*entity.Flyer, error)
}

type flyerRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewFlyerRepository(db *DB, logger *slog.Logger) FlyerRepository {
	return &flyerRepository{db: db, logger: logger}
}

func (r *flyerRepository) Create(ctx context.Context, req *CreateFlyerRequest) (*entity.Flyer, error) {
	var id int64
	err := r.db.Builder.
		Insert("flyers").
		Columns("merchant_name", "promotion_expiry", "source_contact", "artifact_path").
		Values(req.MerchantName, req.PromotionExpiry, req.SourceContact, req.ArtifactPath).
		Suffix("RETURNING id").
		RunWith(r.db.SQL).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		r.logger.Error("failed to create flyer",
			"merchant", req.MerchantName,
			"source_contact", req.SourceContact,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", common.ErrFlyerInsert, err)
	}

	return &entity.Flyer{
		ID:              id,
		MerchantName:    req.MerchantName,
		PromotionExpiry: req.PromotionExpiry,
		SourceContact:   req.SourceContact,
		ArtifactPath:    req.ArtifactPath,
	}, nil
}
