package models

import (
	"testing"
	"time"
)

func TestProductSecurityRefs_AllSchemaShapes(t *testing.T) {
	p := &Product{
		PayoffStructure: &PayoffStructure{
			Components: []PayoffComponent{
				{Security: &SecurityRef{FullTicker: "AAPL.US"}},
				{Basket: []SecurityRef{{Symbol: "OR", Exchange: "PA"}, {Symbol: "SAP", Exchange: "DE"}}},
			},
		},
		Structure: []StructureSection{
			{Underlying: &SecurityRef{Ticker: "MSFT"}},
			{Securities: []SecurityRef{{Ticker: "NVDA"}}},
		},
		Underlyings: []SecurityRef{{Ticker: "GOOG"}},
		Baskets:     []SecurityRef{{Ticker: "AMZN"}},
	}

	refs := p.SecurityRefs()
	if len(refs) != 7 {
		t.Fatalf("got %d refs, want 7: %+v", len(refs), refs)
	}

	if refs[0].FullTicker != "AAPL.US" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[6].Ticker != "AMZN" {
		t.Errorf("refs[6] = %+v", refs[6])
	}
}

func TestProductSecurityRefs_EmptyProduct(t *testing.T) {
	p := &Product{Name: "empty"}
	if refs := p.SecurityRefs(); len(refs) != 0 {
		t.Errorf("got %d refs, want 0", len(refs))
	}
}

func TestProductEarliestReferenceDate(t *testing.T) {
	trade := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	value := time.Date(2023, 3, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		product Product
		want    time.Time
	}{
		{"trade before value", Product{TradeDate: trade, ValueDate: value}, trade},
		{"value before trade", Product{TradeDate: value, ValueDate: trade}, trade},
		{"only trade", Product{TradeDate: trade}, trade},
		{"only value", Product{ValueDate: value}, value},
		{"neither", Product{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.EarliestReferenceDate(); !got.Equal(tt.want) {
				t.Errorf("EarliestReferenceDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBarDateKey(t *testing.T) {
	morning := Bar{Date: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)}
	evening := Bar{Date: time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC)}

	if morning.DateKey() != "2025-06-10" {
		t.Errorf("DateKey = %q", morning.DateKey())
	}
	if morning.DateKey() != evening.DateKey() {
		t.Error("time-of-day must not affect bar identity")
	}
}

func TestMergeSummaryAdd(t *testing.T) {
	total := MergeSummary{Cached: 1, Skipped: 2, Errors: 0}
	total.Add(MergeSummary{Cached: 3, Skipped: 1, Errors: 2})

	if total.Cached != 4 || total.Skipped != 3 || total.Errors != 2 {
		t.Errorf("total = %+v", total)
	}
}
