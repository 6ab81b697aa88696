package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/encartelab/flyer-tracker/internal/repository"
)

// Service is a tiny façade over the promotion repository that produces XLSX
// bytes for reports.
type Service struct {
	promotions repository.PromotionRepository
	logger     *slog.Logger
}

func NewService(promotions repository.PromotionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{promotions: promotions, logger: logger}
}

// ExportPromotionsXLSX returns an XLSX workbook (as bytes) for the given
// created-at window.
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> all promotions.
func (s *Service) ExportPromotionsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	rows, err := s.promotions.ListRows(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Promotions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Merchant",
		"Product",
		"Brand",
		"Price",
		"Unit",
		"Standardized Qty",
		"Price Per Unit",
		"Promotion Expiry",
		"Artifact Path",
		"Recorded At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		brand := r.Brand
		if brand == "" {
			brand = "-"
		}
		expiry := ""
		if r.PromotionExpiry != nil {
			expiry = *r.PromotionExpiry
		}

		write(1, r.MerchantName)
		write(2, r.ProductName)
		write(3, brand)
		write(4, r.PriceAmount)
		write(5, r.StandardizedUnit)
		write(6, r.StandardizedValue)
		write(7, r.PricePerUnit)
		write(8, expiry)
		write(9, r.ArtifactPath)
		if !r.CreatedAt.IsZero() {
			write(10, r.CreatedAt.Format("2006-01-02"))
		}

		rowIdx++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 22) // merchant
	_ = f.SetColWidth(sheet, "B", "B", 28) // product
	_ = f.SetColWidth(sheet, "C", "C", 18) // brand
	_ = f.SetColWidth(sheet, "D", "G", 14) // price columns
	_ = f.SetColWidth(sheet, "H", "H", 18) // expiry
	_ = f.SetColWidth(sheet, "I", "I", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
