package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// SaveSupportItem upserts a catalogue item.
func (r *SQLRepository) SaveSupportItem(ctx context.Context, item *domain.SupportItem) error {
	if err := requireID("code", item.Code); err != nil {
		return err
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO support_items (code, name, category, unit_type, base_price, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			unit_type = excluded.unit_type,
			base_price = excluded.base_price,
			version = excluded.version,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		item.Code, item.Name, item.Category, item.UnitType,
		item.BasePrice, item.Version, item.UpdatedAt.UTC(),
	)
	return err
}

// GetSupportItem retrieves a catalogue item by code.
func (r *SQLRepository) GetSupportItem(ctx context.Context, code string) (*domain.SupportItem, error) {
	query := `
		SELECT code, name, category, unit_type, base_price, version, updated_at
		FROM support_items
		WHERE code = ?
	`

	var item domain.SupportItem
	err := r.db.QueryRowContext(ctx, r.rebind(query), code).Scan(
		&item.Code, &item.Name, &item.Category, &item.UnitType,
		&item.BasePrice, &item.Version, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SavePriceEntry upserts the price limit for an (item, area) pair.
func (r *SQLRepository) SavePriceEntry(ctx context.Context, entry *domain.PriceEntry) error {
	if err := requireID("supportItemCode", entry.SupportItemCode); err != nil {
		return err
	}
	if entry.EffectiveDate.IsZero() {
		entry.EffectiveDate = time.Now().UTC()
	}

	query := `
		INSERT INTO price_entries (support_item_code, area, price_limit, effective_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(support_item_code, area) DO UPDATE SET
			price_limit = excluded.price_limit,
			effective_date = excluded.effective_date
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		entry.SupportItemCode, string(entry.Area), entry.PriceLimit, entry.EffectiveDate.UTC(),
	)
	return err
}

// GetPriceEntry retrieves the price limit for an (item, area) pair.
func (r *SQLRepository) GetPriceEntry(ctx context.Context, code string, area domain.GeographicArea) (*domain.PriceEntry, error) {
	query := `
		SELECT support_item_code, area, price_limit, effective_date
		FROM price_entries
		WHERE support_item_code = ? AND area = ?
	`

	var entry domain.PriceEntry
	var areaStr string
	err := r.db.QueryRowContext(ctx, r.rebind(query), code, string(area)).Scan(
		&entry.SupportItemCode, &areaStr, &entry.PriceLimit, &entry.EffectiveDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.Area = domain.GeographicArea(areaStr)
	return &entry, nil
}
