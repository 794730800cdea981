package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

const sampleCatalogue = `Code,Name,Category,Unit,Standard,Remote,Very Remote,Effective Date
01_011_0107_1_1,Assistance With Self-Care Activities - Standard - Weekday Daytime,Daily Activities,H,$70.23,$98.32,$105.35,2025-07-01
07_002_0106_8_3,Support Connection,Support Coordination,H,"$1,100.14",,,
,Missing code,,H,10.00,,,
04_104_0125_6_1,Broken,,H,abc,,,
15_037_0117_1_3,No prices,,H,,,,
`

func TestParseCatalogue(t *testing.T) {
	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows, skipped, err := parseCatalogue(strings.NewReader(sampleCatalogue), fallback)
	if err != nil {
		t.Fatalf("parseCatalogue failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped rows, got %d", skipped)
	}

	t.Run("AllAreas", func(t *testing.T) {
		row := rows[0]
		if row.Item.Code != "01_011_0107_1_1" || row.Item.BasePrice != 70.23 {
			t.Errorf("unexpected item %+v", row.Item)
		}
		if len(row.Entries) != 3 {
			t.Fatalf("expected 3 price entries, got %d", len(row.Entries))
		}
		for _, e := range row.Entries {
			if e.Area == domain.AreaVeryRemote && e.PriceLimit != 105.35 {
				t.Errorf("expected very remote 105.35, got %.2f", e.PriceLimit)
			}
			if !e.EffectiveDate.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("expected row effective date, got %v", e.EffectiveDate)
			}
		}
	})

	t.Run("ThousandsSeparatorAndDefaultDate", func(t *testing.T) {
		row := rows[1]
		if len(row.Entries) != 1 || row.Entries[0].PriceLimit != 1100.14 {
			t.Fatalf("unexpected entries %+v", row.Entries)
		}
		if !row.Entries[0].EffectiveDate.Equal(fallback) {
			t.Errorf("expected fallback effective date, got %v", row.Entries[0].EffectiveDate)
		}
	})
}

func TestParseCatalogueRequiresColumns(t *testing.T) {
	_, _, err := parseCatalogue(strings.NewReader("code,name\nx,y\n"), time.Now())
	if err == nil {
		t.Error("expected error for missing standard column")
	}
}

type recordingWriter struct {
	mu      sync.Mutex
	items   int
	entries int
	failOn  string
}

func (w *recordingWriter) SaveSupportItem(ctx context.Context, item *domain.SupportItem) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if item.Code == w.failOn {
		return errors.New("boom")
	}
	w.items++
	return nil
}

func (w *recordingWriter) SavePriceEntry(ctx context.Context, entry *domain.PriceEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries++
	return nil
}

func TestRunImport(t *testing.T) {
	rows, _, err := parseCatalogue(strings.NewReader(sampleCatalogue), time.Now())
	if err != nil {
		t.Fatalf("parseCatalogue failed: %v", err)
	}

	w := &recordingWriter{failOn: "07_002_0106_8_3"}
	stats := runImport(context.Background(), w, rows, 3)

	if stats.Items != 1 || stats.Entries != 3 || stats.Errors != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if w.items != 1 || w.entries != 3 {
		t.Errorf("writer saw %d items and %d entries", w.items, w.entries)
	}
}
