package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/cache"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

type fakeStore struct {
	items   map[string]*domain.SupportItem
	entries map[string]*domain.PriceEntry
	lookups int
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:   make(map[string]*domain.SupportItem),
		entries: make(map[string]*domain.PriceEntry),
	}
}

func (f *fakeStore) SaveSupportItem(ctx context.Context, item *domain.SupportItem) error {
	f.items[item.Code] = item
	return nil
}

func (f *fakeStore) GetSupportItem(ctx context.Context, code string) (*domain.SupportItem, error) {
	if item, ok := f.items[code]; ok {
		return item, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) SavePriceEntry(ctx context.Context, entry *domain.PriceEntry) error {
	f.entries[entry.SupportItemCode+"/"+string(entry.Area)] = entry
	return nil
}

func (f *fakeStore) GetPriceEntry(ctx context.Context, code string, area domain.GeographicArea) (*domain.PriceEntry, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.entries[code+"/"+string(area)]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func intPtr(v int) *int { return &v }

func TestGetPrice(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.entries["01_011_0107_1_1/remote"] = &domain.PriceEntry{
		SupportItemCode: "01_011_0107_1_1",
		Area:            domain.AreaRemote,
		PriceLimit:      98.32,
		EffectiveDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	store.items["01_011_0107_1_1"] = &domain.SupportItem{Code: "01_011_0107_1_1", Name: "Self-Care Weekday"}

	svc := NewService(store, nil, domain.DefaultRulesConfig())

	tests := []struct {
		name     string
		code     string
		area     string
		age      *int
		expected float64
		source   domain.PriceSource
	}{
		{"CatalogueRowUnmodified", "01_011_0107_1_1", "remote", nil, 98.32, domain.PriceSourceCatalogue},
		{"CatalogueRowMinor", "01_011_0107_1_1", "remote", intPtr(16), 108.15, domain.PriceSourceCatalogue},
		{"CatalogueRowAdult", "01_011_0107_1_1", "remote", intPtr(18), 98.32, domain.PriceSourceCatalogue},
		{"DefaultStandard", "01_011_0107_1_1", "standard", nil, 70.23, domain.PriceSourceDefault},
		{"DefaultEmptyAreaIsStandard", "07_002_0106_8_3", "", nil, 100.14, domain.PriceSourceDefault},
		{"DefaultVeryRemoteLoading", "07_002_0106_8_3", "very_remote", nil, 150.21, domain.PriceSourceDefault},
		{"UnknownItem", "99_999_9999_9_9", "standard", nil, 0, domain.PriceSourceUnknown},
		{"UnknownItemMinorStillZero", "99_999_9999_9_9", "standard", intPtr(5), 0, domain.PriceSourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetPrice(ctx, tt.code, tt.area, tt.age)
			if err != nil {
				t.Fatalf("GetPrice failed: %v", err)
			}
			if result.UnitPrice != tt.expected {
				t.Errorf("expected unit price %.2f, got %.2f", tt.expected, result.UnitPrice)
			}
			if result.Source != tt.source {
				t.Errorf("expected source %s, got %s", tt.source, result.Source)
			}
		})
	}

	t.Run("UnknownName", func(t *testing.T) {
		result, _ := svc.GetPrice(ctx, "99_999_9999_9_9", "", nil)
		if result.Name != domain.UnknownSupportItemName {
			t.Errorf("expected name %q, got %q", domain.UnknownSupportItemName, result.Name)
		}
	})

	t.Run("AgeLoadingReported", func(t *testing.T) {
		result, _ := svc.GetPrice(ctx, "01_011_0107_1_1", "remote", intPtr(10))
		if result.AgeLoading != 1.10 {
			t.Errorf("expected age loading 1.10, got %.2f", result.AgeLoading)
		}
		if result.LookupPrice != 98.32 {
			t.Errorf("expected lookup price 98.32, got %.2f", result.LookupPrice)
		}
	})

	t.Run("InvalidArea", func(t *testing.T) {
		_, err := svc.GetPrice(ctx, "01_011_0107_1_1", "mars", nil)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("AreaNormalised", func(t *testing.T) {
		result, err := svc.GetPrice(ctx, "01_011_0107_1_1", "Remote", nil)
		if err != nil {
			t.Fatalf("GetPrice failed: %v", err)
		}
		if result.Source != domain.PriceSourceCatalogue {
			t.Errorf("expected catalogue hit for normalised area, got %s", result.Source)
		}
	})
}

func TestGetPriceStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc := NewService(store, nil, domain.DefaultRulesConfig())

	_, err := svc.GetPrice(context.Background(), "01_011_0107_1_1", "standard", nil)
	if err == nil {
		t.Fatal("expected store failure to surface")
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Error("store failure should not be a validation error")
	}
}

func TestGetPriceCaching(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.entries["01_011_0107_1_1/standard"] = &domain.PriceEntry{
		SupportItemCode: "01_011_0107_1_1",
		Area:            domain.AreaStandard,
		PriceLimit:      70.23,
	}

	svc := NewService(store, cache.NewLRUCache(100), domain.DefaultRulesConfig())

	for i := 0; i < 3; i++ {
		if _, err := svc.GetPrice(ctx, "01_011_0107_1_1", "standard", nil); err != nil {
			t.Fatalf("GetPrice failed: %v", err)
		}
	}
	if store.lookups != 1 {
		t.Errorf("expected 1 store lookup, got %d", store.lookups)
	}

	// Upsert invalidates the cached lookup
	err := svc.SavePriceEntry(ctx, &domain.PriceEntry{
		SupportItemCode: "01_011_0107_1_1",
		Area:            domain.AreaStandard,
		PriceLimit:      72.00,
	})
	if err != nil {
		t.Fatalf("SavePriceEntry failed: %v", err)
	}

	result, err := svc.GetPrice(ctx, "01_011_0107_1_1", "standard", nil)
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if result.UnitPrice != 72.00 {
		t.Errorf("expected refreshed price 72.00, got %.2f", result.UnitPrice)
	}
	if store.lookups != 2 {
		t.Errorf("expected 2 store lookups after invalidation, got %d", store.lookups)
	}

	// Age loading is never cached
	minor, _ := svc.GetPrice(ctx, "01_011_0107_1_1", "standard", intPtr(12))
	if minor.UnitPrice != 79.20 {
		t.Errorf("expected minor price 79.20, got %.2f", minor.UnitPrice)
	}
}

func TestSavePriceEntryValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil, domain.DefaultRulesConfig())

	err := svc.SavePriceEntry(context.Background(), &domain.PriceEntry{
		SupportItemCode: "01_011_0107_1_1",
		Area:            "outback",
		PriceLimit:      10,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for unknown area, got %v", err)
	}
}
