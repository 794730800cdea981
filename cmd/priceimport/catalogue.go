package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// catalogueRow is one support item and its per-area price limits.
type catalogueRow struct {
	Item    domain.SupportItem
	Entries []domain.PriceEntry
}

var areaColumns = map[string]domain.GeographicArea{
	"standard":    domain.AreaStandard,
	"remote":      domain.AreaRemote,
	"very_remote": domain.AreaVeryRemote,
}

// parseCatalogue reads catalogue rows. Malformed rows are logged and
// counted in skipped; a bad header is an error.
func parseCatalogue(r io.Reader, defaultDate time.Time) (rows []catalogueRow, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		colIndex[key] = i
	}
	for _, required := range []string{"code", "name", "standard"} {
		if _, ok := colIndex[required]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			slog.Warn("skipping malformed row", "line", line, "error", err)
			skipped++
			continue
		}

		row, err := parseRow(record, field, defaultDate)
		if err != nil {
			slog.Warn("skipping row", "line", line, "error", err)
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

func parseRow(record []string, field func([]string, string) string, defaultDate time.Time) (catalogueRow, error) {
	code := field(record, "code")
	if code == "" {
		return catalogueRow{}, fmt.Errorf("code is empty")
	}

	effective := defaultDate
	if v := field(record, "effective_date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return catalogueRow{}, fmt.Errorf("item %s: invalid effective_date %q", code, v)
		}
		effective = d
	}

	row := catalogueRow{
		Item: domain.SupportItem{
			Code:     code,
			Name:     field(record, "name"),
			Category: field(record, "category"),
			UnitType: field(record, "unit"),
			Version:  effective.Format(time.DateOnly),
		},
	}

	for column, area := range areaColumns {
		raw := field(record, column)
		if raw == "" {
			continue
		}
		price, err := parsePrice(raw)
		if err != nil {
			return catalogueRow{}, fmt.Errorf("item %s: %s price: %w", code, column, err)
		}
		if area == domain.AreaStandard {
			row.Item.BasePrice = price
		}
		row.Entries = append(row.Entries, domain.PriceEntry{
			SupportItemCode: code,
			Area:            area,
			PriceLimit:      price,
			EffectiveDate:   effective,
		})
	}

	if len(row.Entries) == 0 {
		return catalogueRow{}, fmt.Errorf("item %s has no prices", code)
	}
	return row, nil
}

// parsePrice accepts plain numbers and the "$1,234.56" form used in the
// published catalogue.
func parsePrice(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return v, nil
}
