// Package persist commits one extracted payload: a flyer row, its catalog
// entries, and one promotion per line item.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/encartelab/flyer-tracker/internal/llm"
	"github.com/encartelab/flyer-tracker/internal/repository"
)

// Result summarizes one persistence run. A submission can land here with
// some line items skipped; those are logged, not surfaced as failure.
type Result struct {
	FlyerID         int64
	ItemsSaved      int
	ItemsSkipped    int
	ProductsCreated int
}

type Service struct {
	flyers     repository.FlyerRepository
	catalog    repository.CatalogRepository
	promotions repository.PromotionRepository
	logger     *slog.Logger
}

func NewService(
	flyers repository.FlyerRepository,
	catalog repository.CatalogRepository,
	promotions repository.PromotionRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		flyers:     flyers,
		catalog:    catalog,
		promotions: promotions,
		logger:     logger,
	}
}

// Persist writes the flyer row first; failure there is fatal for the
// submission. Line items are then processed independently: a failed lookup
// or insert skips that item only, never its siblings, and nothing rolls the
// flyer back. Partial commits are an accepted outcome.
func (s *Service) Persist(ctx context.Context, payload llm.ExtractedPayload, sourceContact, artifactPath string) (*Result, error) {
	start := time.Now()
	s.logger.Info("persist.start",
		"merchant", payload.MerchantName,
		"source_contact", sourceContact,
		"line_items", len(payload.LineItems),
	)

	flyer, err := s.flyers.Create(ctx, &repository.CreateFlyerRequest{
		MerchantName:    payload.MerchantName,
		PromotionExpiry: payload.PromotionExpiry,
		SourceContact:   sourceContact,
		ArtifactPath:    artifactPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create flyer: %w", err)
	}
	s.logger.Info("persist.flyer.ok", "flyer_id", flyer.ID, "merchant", payload.MerchantName)

	res := &Result{FlyerID: flyer.ID}
	for i, item := range payload.LineItems {
		brand := ""
		if item.Brand != nil {
			brand = *item.Brand
		}

		productID, created, err := s.catalog.GetOrCreate(ctx, item.ProductName, brand)
		if err != nil {
			s.logger.Error("persist.item.catalog_error",
				"flyer_id", flyer.ID, "index", i,
				"product_name", item.ProductName, "brand", brand,
				"error", err,
			)
			res.ItemsSkipped++
			continue
		}
		if created {
			res.ProductsCreated++
		}

		if _, err := s.promotions.Create(ctx, &repository.CreatePromotionRequest{
			FlyerID:           flyer.ID,
			ProductID:         productID,
			PriceAmount:       item.PriceAmount,
			StandardizedUnit:  item.StandardizedUnit,
			StandardizedValue: item.StandardizedValue,
			PricePerUnit:      item.PricePerUnit,
		}); err != nil {
			s.logger.Error("persist.item.promotion_error",
				"flyer_id", flyer.ID, "index", i,
				"product_name", item.ProductName,
				"error", err,
			)
			res.ItemsSkipped++
			continue
		}

		res.ItemsSaved++
		s.logger.Info("persist.item.ok",
			"flyer_id", flyer.ID,
			"product_id", productID,
			"product_name", item.ProductName,
			"price", item.PriceAmount,
		)
	}

	s.logger.Info("persist.ok",
		"flyer_id", flyer.ID,
		"items_saved", res.ItemsSaved,
		"items_skipped", res.ItemsSkipped,
		"products_created", res.ProductsCreated,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
