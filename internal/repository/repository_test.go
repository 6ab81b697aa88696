package repository

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

// openTestDB gives each test its own named in-memory database so state
// never leaks between tests.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := OpenSQLite(dsn, slog.Default())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { Close(db, slog.Default()) })
	return db
}

func TestCatalogGetOrCreate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCatalogRepository(db, slog.Default())

	t.Run("creates then reuses", func(t *testing.T) {
		id1, created, err := repo.GetOrCreate(ctx, "Arroz", "MarcaY")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		if !created {
			t.Errorf("first call: created = false")
		}

		id2, created, err := repo.GetOrCreate(ctx, "Arroz", "MarcaY")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		if created {
			t.Errorf("second call: created = true")
		}
		if id1 != id2 {
			t.Errorf("ids differ: %d vs %d", id1, id2)
		}
	})

	t.Run("brand distinguishes products", func(t *testing.T) {
		a, _, err := repo.GetOrCreate(ctx, "Feijao", "")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		b, _, err := repo.GetOrCreate(ctx, "Feijao", "MarcaZ")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		if a == b {
			t.Errorf("same id for distinct brands")
		}
	})

	t.Run("empty brand is a stable key", func(t *testing.T) {
		a, _, err := repo.GetOrCreate(ctx, "Leite", "")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		b, created, err := repo.GetOrCreate(ctx, "Leite", "")
		if err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
		if created || a != b {
			t.Errorf("brandless product not deduplicated: %d vs %d", a, b)
		}
	})
}

func TestFlyerCreate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFlyerRepository(db, slog.Default())

	expiry := "2025-10-31"
	flyer, err := repo.Create(ctx, &CreateFlyerRequest{
		MerchantName:    "Mercado X",
		PromotionExpiry: &expiry,
		SourceContact:   "5511999999999@c.us",
		ArtifactPath:    "encartes-publico/encarte-1.jpg",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if flyer.ID == 0 {
		t.Errorf("flyer id not assigned")
	}

	second, err := repo.Create(ctx, &CreateFlyerRequest{
		MerchantName:  "Mercado Y",
		SourceContact: "c",
		ArtifactPath:  "p",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if second.ID == flyer.ID {
		t.Errorf("duplicate flyer id %d", second.ID)
	}
}

func TestPromotionListRows(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	flyers := NewFlyerRepository(db, slog.Default())
	catalog := NewCatalogRepository(db, slog.Default())
	promos := NewPromotionRepository(db, slog.Default())

	flyer, err := flyers.Create(ctx, &CreateFlyerRequest{
		MerchantName:  "Mercado X",
		SourceContact: "c",
		ArtifactPath:  "encartes-publico/e.jpg",
	})
	if err != nil {
		t.Fatalf("create flyer: %v", err)
	}
	productID, _, err := catalog.GetOrCreate(ctx, "Arroz", "MarcaY")
	if err != nil {
		t.Fatalf("get or create product: %v", err)
	}
	if _, err := promos.Create(ctx, &CreatePromotionRequest{
		FlyerID:           flyer.ID,
		ProductID:         productID,
		PriceAmount:       19.9,
		StandardizedUnit:  "kg",
		StandardizedValue: 5,
		PricePerUnit:      3.98,
	}); err != nil {
		t.Fatalf("create promotion: %v", err)
	}

	t.Run("joins flyer and product columns", func(t *testing.T) {
		rows, err := promos.ListRows(ctx, nil, nil)
		if err != nil {
			t.Fatalf("ListRows error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}
		row := rows[0]
		if row.MerchantName != "Mercado X" || row.ProductName != "Arroz" || row.Brand != "MarcaY" {
			t.Errorf("row = %+v", row)
		}
		if row.PriceAmount != 19.9 || row.PricePerUnit != 3.98 {
			t.Errorf("prices = %v / %v", row.PriceAmount, row.PricePerUnit)
		}
		if row.ArtifactPath != "encartes-publico/e.jpg" {
			t.Errorf("artifact path = %q", row.ArtifactPath)
		}
	})

	t.Run("window excludes rows outside it", func(t *testing.T) {
		past := time.Now().UTC().Add(-48 * time.Hour)
		pastEnd := past.Add(time.Hour)
		rows, err := promos.ListRows(ctx, &past, &pastEnd)
		if err != nil {
			t.Fatalf("ListRows error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("rows = %d, want 0 for a past window", len(rows))
		}
	})
}
