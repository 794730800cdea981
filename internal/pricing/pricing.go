// Package pricing resolves NDIS support item prices for a geographic area.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/cache"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// Service looks up price limits. Resolution order is the catalogue row for
// (code, area), then the default table with area loading, then zero.
type Service struct {
	store    domain.PriceStore
	cache    domain.Cache
	defaults map[string]domain.DefaultPrice
	loadings map[domain.GeographicArea]float64
	minorAge int
	minorMul float64
	ttl      time.Duration
}

// NewService creates a price lookup service. cache may be nil.
func NewService(store domain.PriceStore, c domain.Cache, cfg domain.RulesConfig) *Service {
	return &Service{
		store:    store,
		cache:    c,
		defaults: cfg.DefaultPrices,
		loadings: cfg.AreaLoadings,
		minorAge: cfg.MinorAge,
		minorMul: cfg.MinorAgeLoading,
		ttl:      cfg.PriceCacheTTL,
	}
}

// GetPrice returns the unit price for a support item in an area.
// Missing data never fails the lookup; the result's Source says how it was
// resolved. Only an unknown area or a store failure returns an error.
func (s *Service) GetPrice(ctx context.Context, code, area string, participantAge *int) (*domain.PriceResult, error) {
	if code == "" {
		return nil, domain.NewValidationError("itemCode", "is required")
	}
	geo, err := domain.ParseArea(area)
	if err != nil {
		return nil, err
	}

	base, err := s.lookup(ctx, code, geo)
	if err != nil {
		return nil, err
	}

	result := *base
	result.AgeLoading = 1.0
	result.UnitPrice = result.LookupPrice
	if participantAge != nil && *participantAge < s.minorAge && s.minorMul > 0 {
		result.AgeLoading = s.minorMul
		result.UnitPrice = roundCents(result.LookupPrice * s.minorMul)
	}

	return &result, nil
}

// InvalidateEntry drops the cached lookup for (code, area).
func (s *Service) InvalidateEntry(ctx context.Context, code string, area domain.GeographicArea) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(code, area)); err != nil {
		slog.Warn("failed to invalidate price cache", "item_code", code, "area", area, "error", err)
	}
}

// SavePriceEntry stores a catalogue price and invalidates its cached lookup.
func (s *Service) SavePriceEntry(ctx context.Context, entry *domain.PriceEntry) error {
	area, err := domain.ParseArea(string(entry.Area))
	if err != nil {
		return err
	}
	if entry.PriceLimit < 0 {
		return domain.NewValidationError("priceLimit", "must not be negative")
	}
	entry.Area = area

	if err := s.store.SavePriceEntry(ctx, entry); err != nil {
		return fmt.Errorf("save price entry: %w", err)
	}
	s.InvalidateEntry(ctx, entry.SupportItemCode, area)
	return nil
}

// SaveSupportItem stores a catalogue item. The item's base price is the
// standard area price, so the standard lookup is invalidated.
func (s *Service) SaveSupportItem(ctx context.Context, item *domain.SupportItem) error {
	if item.Code == "" {
		return domain.NewValidationError("code", "is required")
	}
	if err := s.store.SaveSupportItem(ctx, item); err != nil {
		return fmt.Errorf("save support item: %w", err)
	}
	for area := range s.loadings {
		s.InvalidateEntry(ctx, item.Code, area)
	}
	return nil
}

// lookup resolves the area price before age loading, using the cache.
func (s *Service) lookup(ctx context.Context, code string, area domain.GeographicArea) (*domain.PriceResult, error) {
	key := cacheKey(code, area)

	if s.cache != nil {
		var cached domain.PriceResult
		hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			slog.Warn("price cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	result, err := s.resolve(ctx, code, area)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := cache.SetJSON(ctx, s.cache, key, result, s.ttl); err != nil {
			slog.Warn("price cache write failed", "key", key, "error", err)
		}
	}

	return result, nil
}

func (s *Service) resolve(ctx context.Context, code string, area domain.GeographicArea) (*domain.PriceResult, error) {
	result := &domain.PriceResult{
		ItemCode: code,
		Area:     area,
	}

	entry, err := s.store.GetPriceEntry(ctx, code, area)
	switch {
	case err == nil:
		// Stored limits already include geographic loading.
		result.LookupPrice = entry.PriceLimit
		result.Source = domain.PriceSourceCatalogue
		effective := entry.EffectiveDate
		result.EffectiveDate = &effective
		result.Name = s.itemName(ctx, code)
		return result, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get price entry %s/%s: %w", code, area, err)
	}

	if def, ok := s.defaults[code]; ok {
		loading := s.loadings[area]
		if loading == 0 {
			loading = 1.0
		}
		result.Name = def.Name
		result.LookupPrice = roundCents(def.Price * loading)
		result.Source = domain.PriceSourceDefault
		slog.Warn("price not in catalogue, using default table",
			"item_code", code,
			"area", area,
			"price", result.LookupPrice,
		)
		return result, nil
	}

	result.Name = domain.UnknownSupportItemName
	result.Source = domain.PriceSourceUnknown
	slog.Warn("unknown support item, price is zero",
		"item_code", code,
		"area", area,
	)
	return result, nil
}

func (s *Service) itemName(ctx context.Context, code string) string {
	if item, err := s.store.GetSupportItem(ctx, code); err == nil {
		return item.Name
	}
	if def, ok := s.defaults[code]; ok {
		return def.Name
	}
	return code
}

func cacheKey(code string, area domain.GeographicArea) string {
	return "price:" + code + ":" + string(area)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
