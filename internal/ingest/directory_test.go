package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/encartelab/flyer-tracker/internal/artifact"
	"github.com/encartelab/flyer-tracker/internal/entity"
	"github.com/encartelab/flyer-tracker/internal/persist"
	"github.com/encartelab/flyer-tracker/internal/pipeline"
	"github.com/encartelab/flyer-tracker/internal/repository"
)

type stubExtractor struct{}

func (stubExtractor) Infer(_ context.Context, _ []byte, _ string) (string, error) {
	return `{"supermercado":"Mercado X","produtos":[]}`, nil
}

type memFlyers struct{ rows []*repository.CreateFlyerRequest }

func (m *memFlyers) Create(_ context.Context, req *repository.CreateFlyerRequest) (*entity.Flyer, error) {
	m.rows = append(m.rows, req)
	return &entity.Flyer{ID: int64(len(m.rows))}, nil
}

type memCatalog struct{}

func (memCatalog) GetOrCreate(_ context.Context, _, _ string) (int64, bool, error) {
	return 1, false, nil
}

type memPromotions struct{}

func (memPromotions) Create(_ context.Context, _ *repository.CreatePromotionRequest) (int64, error) {
	return 1, nil
}

func (memPromotions) ListRows(_ context.Context, _, _ *time.Time) ([]*entity.PromotionRow, error) {
	return nil, nil
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jpg")
	writeFile(t, root, "b.PNG")
	writeFile(t, root, "notes.txt")
	writeFile(t, root, ".hidden.jpg")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "sub"), "c.webp")
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, ".git"), "d.jpg")

	flyers := &memFlyers{}
	pipe := pipeline.New(
		stubExtractor{},
		artifact.NewFSStore(t.TempDir(), "", nil),
		persist.NewService(flyers, memCatalog{}, memPromotions{}, nil),
		nil,
	)
	ing := NewDirectoryIngestor(pipe, nil)

	results, stats, err := ing.IngestDirectory(context.Background(), root, "batch@local")
	if err != nil {
		t.Fatalf("IngestDirectory error: %v", err)
	}

	if stats.Matched != 3 {
		t.Errorf("matched = %d, want 3 (jpg, PNG, webp)", stats.Matched)
	}
	if stats.Succeeded != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d entries", len(results))
	}
	for _, r := range results {
		if r.Err != "" {
			t.Errorf("%s failed: %s", r.Path, r.Err)
		}
		if r.FlyerID == 0 {
			t.Errorf("%s has no flyer id", r.Path)
		}
	}
	if len(flyers.rows) != 3 {
		t.Errorf("flyer rows = %d, want 3", len(flyers.rows))
	}
	for _, row := range flyers.rows {
		if row.SourceContact != "batch@local" {
			t.Errorf("source contact = %q", row.SourceContact)
		}
	}
}

func TestIngestDirectoryEmptyRoot(t *testing.T) {
	ing := NewDirectoryIngestor(nil, nil)
	if _, _, err := ing.IngestDirectory(context.Background(), "  ", "c"); err == nil {
		t.Fatal("expected error for blank root")
	}
}
