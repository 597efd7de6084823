package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finbridge/quote-service/internal/domain"
	"github.com/finbridge/quote-service/internal/infrastructure/marketdata"
)

func TestResolvePrices_OrderPreserved(t *testing.T) {
	// First request completes last: output order must still match input order.
	delays := map[string]time.Duration{
		"AAPL":  30 * time.Millisecond,
		"MSFT":  10 * time.Millisecond,
		"GOOGL": 1 * time.Millisecond,
	}

	provider := &MockQuoteProvider{
		fetchChartFunc: func(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
			time.Sleep(delays[fullSymbol])
			return &marketdata.ChartSnapshot{
				Symbol:   fullSymbol,
				Price:    domain.NewDecimalFromInt(100),
				Currency: "USD",
			}, nil
		},
	}

	service := NewQuoteService(provider, 0)

	requests := []PriceLookup{
		{Ticker: "AAPL", Market: "US"},
		{Ticker: "MSFT", Market: "US"},
		{Ticker: "GOOGL", Market: "US"},
	}

	records, err := service.ResolvePrices(context.Background(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != len(requests) {
		t.Fatalf("expected %d records, got %d", len(requests), len(records))
	}
	for i, req := range requests {
		if records[i].Symbol != req.Ticker {
			t.Errorf("slot %d: expected symbol %s, got %s", i, req.Ticker, records[i].Symbol)
		}
	}
}

func TestResolvePrices_SkipsEmptyTickers(t *testing.T) {
	provider := &MockQuoteProvider{
		fetchChartFunc: func(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
			if fullSymbol == "" || fullSymbol == ".KS" {
				t.Errorf("provider called for an empty ticker: %q", fullSymbol)
			}
			return &marketdata.ChartSnapshot{
				Symbol:   fullSymbol,
				Price:    domain.NewDecimalFromInt(100),
				Currency: "USD",
			}, nil
		},
	}

	service := NewQuoteService(provider, 0)

	requests := []PriceLookup{
		{Ticker: "", Market: "US"},
		{Ticker: "AAPL", Market: "US"},
		{Ticker: "", Market: "KR"},
	}

	records, err := service.ResolvePrices(context.Background(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", records[0].Symbol)
	}
}

func TestResolvePrices_NotFoundYieldsSentinel(t *testing.T) {
	provider := &MockQuoteProvider{
		fetchChartFunc: func(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
			if fullSymbol == "GONE" {
				return nil, fmt.Errorf("symbol %s: %w", fullSymbol, domain.ErrInstrumentNotFound)
			}
			return &marketdata.ChartSnapshot{
				Symbol:   fullSymbol,
				Price:    mustDecimal(t, "195.5"),
				Currency: "USD",
			}, nil
		},
	}

	service := NewQuoteService(provider, 0)

	requests := []PriceLookup{
		{Ticker: "AAPL", Market: "US"},
		{Ticker: "GONE", Market: "US"},
	}

	records, err := service.ResolvePrices(context.Background(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	sentinel := records[1]
	if sentinel.Symbol != "GONE" {
		t.Errorf("sentinel must echo the input ticker, got %s", sentinel.Symbol)
	}
	if !sentinel.Price.IsZero() {
		t.Errorf("sentinel price must be zero, got %s", sentinel.Price)
	}
	if sentinel.Currency != nil {
		t.Errorf("sentinel currency must be nil, got %v", *sentinel.Currency)
	}

	if records[0].Symbol != "AAPL" || records[0].Price.IsZero() {
		t.Errorf("sibling record corrupted: %+v", records[0])
	}
}

func TestResolvePrices_HardErrorAbortsBatch(t *testing.T) {
	provider := &MockQuoteProvider{
		fetchChartFunc: func(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
			if fullSymbol == "BOOM" {
				return nil, fmt.Errorf("API returned status 500")
			}
			return &marketdata.ChartSnapshot{
				Symbol:   fullSymbol,
				Price:    domain.NewDecimalFromInt(100),
				Currency: "USD",
			}, nil
		},
	}

	service := NewQuoteService(provider, 0)

	requests := []PriceLookup{
		{Ticker: "AAPL", Market: "US"},
		{Ticker: "BOOM", Market: "US"},
		{Ticker: "MSFT", Market: "US"},
	}

	records, err := service.ResolvePrices(context.Background(), requests)
	if err == nil {
		t.Fatal("expected batch error, got nil")
	}
	if records != nil {
		t.Errorf("expected no partial list, got %d records", len(records))
	}
}

func TestResolvePrices_EmptyBatch(t *testing.T) {
	service := NewQuoteService(&MockQuoteProvider{}, 0)

	records, err := service.ResolvePrices(context.Background(), []PriceLookup{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %d records", len(records))
	}
}

func TestResolvePrices_ConcurrencyCap(t *testing.T) {
	var inFlight, maxInFlight int64
	var mu sync.Mutex

	provider := &MockQuoteProvider{
		fetchChartFunc: func(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
			current := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if current > maxInFlight {
				maxInFlight = current
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return &marketdata.ChartSnapshot{
				Symbol:   fullSymbol,
				Price:    domain.NewDecimalFromInt(1),
				Currency: "USD",
			}, nil
		},
	}

	service := NewQuoteService(provider, 2)

	requests := make([]PriceLookup, 8)
	for i := range requests {
		requests[i] = PriceLookup{Ticker: fmt.Sprintf("T%d", i), Market: "US"}
	}

	records, err := service.ResolvePrices(context.Background(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != len(requests) {
		t.Fatalf("expected %d records, got %d", len(requests), len(records))
	}

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight > 2 {
		t.Errorf("expected at most 2 concurrent calls, observed %d", maxInFlight)
	}
}

func TestResolveTickers_OrderAndNullSlots(t *testing.T) {
	provider := &MockQuoteProvider{
		searchByIdentifierFunc: func(ctx context.Context, code string) ([]marketdata.SearchMatch, error) {
			switch code {
			case "US0378331005":
				time.Sleep(10 * time.Millisecond)
				return []marketdata.SearchMatch{{Symbol: "AAPL"}}, nil
			case "XX0000000000":
				return []marketdata.SearchMatch{}, nil
			case "DE0007164600":
				return []marketdata.SearchMatch{{Symbol: "SAP"}}, nil
			default:
				return nil, fmt.Errorf("unexpected code %s", code)
			}
		},
	}

	service := NewQuoteService(provider, 0)

	isins := []string{"US0378331005", "XX0000000000", "DE0007164600"}

	records, err := service.ResolveTickers(context.Background(), isins)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(records))
	}

	if records[0] == nil || records[0].ISIN != "US0378331005" || *records[0].Ticker != "AAPL" {
		t.Errorf("slot 0 wrong: %+v", records[0])
	}
	if records[1] != nil {
		t.Errorf("expected nil slot for zero-match isin, got %+v", records[1])
	}
	if records[2] == nil || records[2].ISIN != "DE0007164600" || *records[2].Ticker != "SAP" {
		t.Errorf("slot 2 wrong: %+v", records[2])
	}
}

func TestResolveTickers_FailureAbortsBatch(t *testing.T) {
	provider := &MockQuoteProvider{
		searchByIdentifierFunc: func(ctx context.Context, code string) ([]marketdata.SearchMatch, error) {
			if code == "BAD" {
				return nil, fmt.Errorf("API returned status 404")
			}
			return []marketdata.SearchMatch{{Symbol: "AAPL"}}, nil
		},
	}

	service := NewQuoteService(provider, 0)

	records, err := service.ResolveTickers(context.Background(), []string{"US0378331005", "BAD"})
	if err == nil {
		t.Fatal("expected batch error, got nil")
	}
	if records != nil {
		t.Errorf("expected no partial list, got %d slots", len(records))
	}
}

func TestResolveTickers_EmptyBatch(t *testing.T) {
	service := NewQuoteService(&MockQuoteProvider{}, 0)

	records, err := service.ResolveTickers(context.Background(), []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %d slots", len(records))
	}
}

func TestClassifyItemErr(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", domain.ErrInstrumentNotFound)
	hard := fmt.Errorf("connection reset")

	testCases := []struct {
		name       string
		err        error
		fallback   notFoundFallback
		wantAbsent bool
		wantFail   bool
	}{
		{"nil error", nil, sentinelFallback, false, false},
		{"not-found with fallback", notFound, sentinelFallback, true, false},
		{"not-found without fallback", notFound, noFallback, false, true},
		{"hard error with fallback", hard, sentinelFallback, false, true},
		{"hard error without fallback", hard, noFallback, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			absent, fail := classifyItemErr(tc.err, tc.fallback)
			if absent != tc.wantAbsent {
				t.Errorf("absent = %v, want %v", absent, tc.wantAbsent)
			}
			if (fail != nil) != tc.wantFail {
				t.Errorf("fail = %v, want failure %v", fail, tc.wantFail)
			}
		})
	}
}
