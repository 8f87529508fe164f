package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
)

func TestMarketLibrary_ListOrder(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lib := NewMarketLibrary(
		domain.MarketSummary{ID: "b", CreatedAt: t0},
		domain.MarketSummary{ID: "c", CreatedAt: t0.Add(time.Hour)},
		domain.MarketSummary{ID: "a", CreatedAt: t0},
	)

	got, err := lib.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d summaries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestMarketLibrary_GetByID(t *testing.T) {
	lib := NewMarketLibrary(domain.MarketSummary{ID: "m1", BattleID: 7})
	ctx := context.Background()

	s, err := lib.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if s.BattleID != 7 {
		t.Errorf("BattleID mismatch: got %d, want 7", s.BattleID)
	}

	if _, err := lib.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarketLibrary_Add(t *testing.T) {
	lib := NewMarketLibrary()

	if err := lib.Add(domain.MarketSummary{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := lib.Add(domain.MarketSummary{ID: "m1", Status: "Active"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := lib.Add(domain.MarketSummary{ID: "m1", Status: "Ended"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	all, _ := lib.List(context.Background())
	if len(all) != 1 || all[0].Status != "Ended" {
		t.Errorf("expected single replaced summary, got %+v", all)
	}
}
