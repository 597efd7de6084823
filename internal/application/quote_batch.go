package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/finbridge/quote-service/internal/domain"
	"github.com/finbridge/quote-service/internal/infrastructure/marketdata"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PriceLookup is a single item in a batch price request.
type PriceLookup struct {
	Ticker string `json:"ticker"`
	Market string `json:"market"`
}

// notFoundFallback states how a batch treats a provider not-found. The two
// batch kinds deliberately differ: price batches absorb not-found into a
// sentinel record, ticker batches treat every provider failure as fatal to
// the whole batch (zero search matches is not a failure, it is an empty
// success).
type notFoundFallback bool

const (
	sentinelFallback notFoundFallback = true
	noFallback       notFoundFallback = false
)

// classifyItemErr decides whether a per-item provider error is absorbed as
// an absence or fails the batch.
func classifyItemErr(err error, fallback notFoundFallback) (absent bool, fail error) {
	if err == nil {
		return false, nil
	}
	if bool(fallback) && errors.Is(err, domain.ErrInstrumentNotFound) {
		return true, nil
	}
	return false, err
}

// ResolvePrices resolves a batch of price lookups concurrently.
//
// Items with an empty ticker are skipped silently and contribute no output
// slot. Every remaining lookup is launched before any is awaited; the output
// list preserves launch order regardless of completion order. A not-found
// item yields the zero-price sentinel; any other provider failure fails the
// whole batch and no partial list is returned.
func (s *QuoteService) ResolvePrices(ctx context.Context, requests []PriceLookup) ([]domain.PriceRecord, error) {
	launched := make([]PriceLookup, 0, len(requests))
	for _, req := range requests {
		if req.Ticker == "" {
			continue
		}
		launched = append(launched, req)
	}

	logger := slog.With("batch_id", uuid.NewString(), "kind", "prices", "count", len(launched))

	snapshots := make([]*marketdata.ChartSnapshot, len(launched))

	var g errgroup.Group
	if s.batchConcurrency > 0 {
		g.SetLimit(s.batchConcurrency)
	}

	for i, req := range launched {
		i, req := i, req
		fullSymbol := req.Ticker + MarketSuffix(req.Market)
		g.Go(func() error {
			snapshot, err := s.provider.FetchChart(ctx, fullSymbol)
			if absent, fail := classifyItemErr(err, sentinelFallback); fail != nil {
				return fail
			} else if absent {
				logger.WarnContext(ctx, "Instrument not found", "ticker", req.Ticker, "symbol", fullSymbol)
				return nil
			}
			snapshots[i] = snapshot
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Batch price resolution failed", "error", err)
		return nil, err
	}

	records := make([]domain.PriceRecord, len(launched))
	for i, req := range launched {
		if snapshots[i] == nil {
			records[i] = domain.NewPriceSentinel(req.Ticker)
			continue
		}
		records[i] = domain.NewPriceRecord(req.Ticker, snapshots[i].Price, snapshots[i].Currency)
	}

	return records, nil
}

// ResolveTickers resolves a batch of identifier lookups concurrently.
//
// The output is length-preserving: one slot per input identifier, in input
// order. A zero-match search leaves its slot nil while sibling slots are
// still populated; any call failure fails the whole batch.
func (s *QuoteService) ResolveTickers(ctx context.Context, isins []string) ([]*domain.TickerRecord, error) {
	logger := slog.With("batch_id", uuid.NewString(), "kind", "tickers", "count", len(isins))

	records := make([]*domain.TickerRecord, len(isins))

	var g errgroup.Group
	if s.batchConcurrency > 0 {
		g.SetLimit(s.batchConcurrency)
	}

	for i, isin := range isins {
		i, isin := i, isin
		g.Go(func() error {
			matches, err := s.provider.SearchByIdentifier(ctx, isin)
			if _, fail := classifyItemErr(err, noFallback); fail != nil {
				return fail
			}
			if len(matches) == 0 {
				logger.WarnContext(ctx, "No ticker found for identifier", "isin", isin)
				return nil
			}
			record := domain.NewTickerRecord(isin, matches[0].Symbol)
			records[i] = &record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Batch ticker resolution failed", "error", err)
		return nil, err
	}

	return records, nil
}
