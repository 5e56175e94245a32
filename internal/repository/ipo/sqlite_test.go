package ipo

import (
	"context"
	"testing"
	"time"

	domain "github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/platform/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fptr(v float64) *float64 { return &v }

func TestCreate_And_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	open := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	i := &domain.Ipo{
		Name:          "Tata Technologies",
		Symbol:        "TATATECH",
		Exchange:      domain.ExchangeNSE,
		Status:        domain.StatusListed,
		PriceBandLow:  fptr(475),
		PriceBandHigh: fptr(500),
		GMP:           fptr(80),
		OpenDate:      &open,
	}

	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("create: %v", err)
	}
	if i.ID == 0 {
		t.Fatal("expected id to be set")
	}

	got, err := repo.Get(ctx, i.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Tata Technologies" || got.Symbol != "TATATECH" {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.PriceBandHigh == nil || *got.PriceBandHigh != 500 {
		t.Errorf("expected band high 500, got %v", got.PriceBandHigh)
	}
	if got.LatestPrice != nil {
		t.Errorf("expected nil latest price before reconciliation, got %v", got.LatestPrice)
	}
	if got.OpenDate == nil || !got.OpenDate.Equal(open) {
		t.Errorf("expected open date %v, got %v", open, got.OpenDate)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	if _, err := repo.Get(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing ipo")
	}
}

func TestList_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	for _, i := range []*domain.Ipo{
		{Name: "A", Symbol: "AAA", Exchange: domain.ExchangeNSE, Status: domain.StatusListed},
		{Name: "B", Symbol: "BBB", Exchange: domain.ExchangeBSE, Status: domain.StatusListed},
		{Name: "C", Exchange: domain.ExchangeNSE, Status: domain.StatusUpcoming},
	} {
		if err := repo.Create(ctx, i); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	listed, err := repo.List(ctx, domain.ListFilter{Status: domain.StatusListed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 listed ipos, got %d", len(listed))
	}

	all, err := repo.List(ctx, domain.ListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 ipos, got %d", len(all))
	}
}

func TestUpdatePrice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	i := &domain.Ipo{Name: "A", Symbol: "AAA", Exchange: domain.ExchangeNSE, Status: domain.StatusListed}
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdatePrice(ctx, i.ID, 120.5, fptr(20.5), at); err != nil {
		t.Fatalf("update price: %v", err)
	}

	got, err := repo.Get(ctx, i.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LatestPrice == nil || *got.LatestPrice != 120.5 {
		t.Errorf("expected latest price 120.5, got %v", got.LatestPrice)
	}
	if got.PriceChangePercent == nil || *got.PriceChangePercent != 20.5 {
		t.Errorf("expected change percent 20.5, got %v", got.PriceChangePercent)
	}
	if got.PriceUpdatedAt == nil || !got.PriceUpdatedAt.Equal(at) {
		t.Errorf("expected price updated at %v, got %v", at, got.PriceUpdatedAt)
	}
	// Listing fields untouched by a price write.
	if got.Name != "A" || got.Symbol != "AAA" {
		t.Errorf("listing fields changed: %+v", got)
	}
}

func TestUpdate_PreservesSetFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	i := &domain.Ipo{Name: "A", Exchange: domain.ExchangeNSE, Status: domain.StatusUpcoming}
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("create: %v", err)
	}

	i.Name = "A Ltd"
	i.Symbol = "ALTD"
	i.Status = domain.StatusListed
	if err := repo.Update(ctx, i); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, i.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "A Ltd" || got.Symbol != "ALTD" || got.Status != domain.StatusListed {
		t.Errorf("unexpected row after update: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	i := &domain.Ipo{Name: "A", Exchange: domain.ExchangeNSE, Status: domain.StatusUpcoming}
	if err := repo.Create(ctx, i); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, i.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, i.ID); err == nil {
		t.Fatal("expected error after delete")
	}
}
